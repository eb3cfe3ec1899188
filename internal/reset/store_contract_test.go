package reset

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/rate"
)

// Ambos stores deben cumplir el mismo contrato.
func storeFactories() map[string]func(t *testing.T, clock *fakeClock) TokenStore {
	return map[string]func(t *testing.T, clock *fakeClock) TokenStore{
		"memory": func(_ *testing.T, clock *fakeClock) TokenStore {
			return NewMemoryStore(WithClock(clock.Now), WithIDGenerator(seqIDs("tok")))
		},
		"redis": func(t *testing.T, clock *fakeClock) TokenStore {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisStore(rdb, "test:", WithClock(clock.Now), WithIDGenerator(seqIDs("tok")))
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("peek does not mutate", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()

				id, err := s.Issue(ctx, IssueInput{Email: "alice@x.com", Username: "alice@x.com", TenantClass: domain.Customer})
				require.NoError(t, err)

				for i := 0; i < 3; i++ {
					tok, err := s.Peek(ctx, id)
					require.NoError(t, err)
					assert.Equal(t, "alice@x.com", tok.Email)
					assert.Equal(t, domain.Customer, tok.TenantClass)
					assert.False(t, tok.Used)
					assert.True(t, clock.Now().Add(DefaultTTL).Equal(tok.ExpiresAt))
				}

				st, err := s.Stats(ctx)
				require.NoError(t, err)
				assert.Equal(t, Stats{Total: 1, Active: 1}, st)
			})

			t.Run("redeem lifecycle", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()
				id, err := s.Issue(ctx, IssueInput{Email: "b@x.com", TenantClass: domain.Staff})
				require.NoError(t, err)

				tok, err := s.BeginRedeem(ctx, id)
				require.NoError(t, err)
				assert.True(t, tok.Used)

				_, err = s.BeginRedeem(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenUsed)
				_, err = s.Peek(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenUsed)

				require.NoError(t, s.Revert(ctx, id))
				tok, err = s.Peek(ctx, id)
				require.NoError(t, err)
				assert.False(t, tok.Used)

				_, err = s.BeginRedeem(ctx, id)
				require.NoError(t, err)
				require.NoError(t, s.Finalize(ctx, id))

				_, err = s.Peek(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenInvalid)
				// Revert sobre un token ya borrado no lo resucita.
				require.NoError(t, s.Revert(ctx, id))
				_, err = s.Peek(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenInvalid)
			})

			t.Run("expiry boundary", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()
				id, err := s.Issue(ctx, IssueInput{Email: "c@x.com", TenantClass: domain.Admin})
				require.NoError(t, err)

				clock.Advance(DefaultTTL)
				_, err = s.Peek(ctx, id)
				require.NoError(t, err, "valid exactly at expiresAt")

				clock.Advance(time.Second)
				_, err = s.Peek(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenExpired)
				_, err = s.BeginRedeem(ctx, id)
				assert.ErrorIs(t, err, domain.ErrTokenExpired)
			})

			t.Run("sweep removes only expired", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()

				old, err := s.Issue(ctx, IssueInput{Email: "old@x.com", TenantClass: domain.Customer})
				require.NoError(t, err)
				clock.Advance(30 * time.Minute)
				fresh, err := s.Issue(ctx, IssueInput{Email: "new@x.com", TenantClass: domain.Customer})
				require.NoError(t, err)
				clock.Advance(31 * time.Minute)

				st, err := s.Stats(ctx)
				require.NoError(t, err)
				assert.Equal(t, Stats{Total: 2, Active: 1, Expired: 1}, st)

				n, err := s.SweepExpired(ctx)
				require.NoError(t, err)
				assert.Equal(t, 1, n)

				_, err = s.Peek(ctx, old)
				assert.ErrorIs(t, err, domain.ErrTokenInvalid)
				_, err = s.Peek(ctx, fresh)
				assert.NoError(t, err)
			})

			t.Run("token at exact expiry instant stays active", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()

				id, err := s.Issue(ctx, IssueInput{Email: "edge@x.com", TenantClass: domain.Customer})
				require.NoError(t, err)
				tok, err := s.Peek(ctx, id)
				require.NoError(t, err)
				clock.Advance(tok.ExpiresAt.Sub(clock.Now()))
				require.True(t, clock.Now().Equal(tok.ExpiresAt))

				n, err := s.SweepExpired(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)

				st, err := s.Stats(ctx)
				require.NoError(t, err)
				assert.Equal(t, Stats{Total: 1, Active: 1}, st)

				_, err = s.Peek(ctx, id)
				assert.NoError(t, err)
			})

			t.Run("concurrent redeem has one winner", func(t *testing.T) {
				clock := newFakeClock()
				s := factory(t, clock)
				ctx := context.Background()
				id, err := s.Issue(ctx, IssueInput{Email: "d@x.com", TenantClass: domain.Customer})
				require.NoError(t, err)

				const n = 8
				var wg sync.WaitGroup
				errs := make([]error, n)
				for i := 0; i < n; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						_, errs[i] = s.BeginRedeem(ctx, id)
					}(i)
				}
				wg.Wait()

				wins := 0
				for _, err := range errs {
					if err == nil {
						wins++
						continue
					}
					assert.ErrorIs(t, err, domain.ErrTokenUsed)
				}
				assert.Equal(t, 1, wins)
			})
		})
	}
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Peek(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = s.BeginRedeem(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRedisStoreDoesNotPersistRawID(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb, "pw:", WithIDGenerator(func() (string, error) { return "raw-token-value", nil }))

	id, err := s.Issue(context.Background(), IssueInput{Email: "e@x.com", TenantClass: domain.Customer})
	require.NoError(t, err)
	assert.Equal(t, "raw-token-value", id)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "raw-token-value")
	v, err := mr.Get(keys[0])
	require.NoError(t, err)
	assert.NotContains(t, v, "raw-token-value")
	assert.Greater(t, mr.TTL(keys[0]), DefaultTTL)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb, "")
	mr.Close()

	_, err = s.Issue(context.Background(), IssueInput{Email: "e@x.com"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

// Tokens y limitador comparten la instancia de Redis.
func TestRedisStoreCoexistsWithRateLimiter(t *testing.T) {
	for name, prefixes := range map[string][2]string{
		"separate keyspaces": {"accountsd:" + RedisKeyspace, "accountsd:rl:"},
		"shared root prefix": {"accountsd:", "accountsd:rl:"},
	} {
		t.Run(name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			clock := newFakeClock()
			s := NewRedisStore(rdb, prefixes[0], WithClock(clock.Now), WithIDGenerator(seqIDs("tok")))
			lim := rate.NewRedisLimiter(rdb, prefixes[1], 5, time.Minute)
			ctx := context.Background()

			_, err := s.Issue(ctx, IssueInput{Email: "a@x.com", TenantClass: domain.Customer})
			require.NoError(t, err)
			_, err = lim.Allow(ctx, "forgot:1.2.3.4")
			require.NoError(t, err)
			require.NoError(t, rdb.HSet(ctx, prefixes[0]+"meta", "k", "v").Err())

			clock.Advance(2 * time.Hour)

			n, err := s.SweepExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			st, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, Stats{}, st)
		})
	}
}
