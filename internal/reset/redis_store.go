package reset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/accountsd/internal/domain"
	tokens "github.com/dropDatabas3/accountsd/internal/security/token"
)

const (
	redisMaxRetries = 4
	// expiredGrace mantiene la clave un rato después de ExpiresAt para
	// poder responder "expired" en vez de "invalid".
	expiredGrace = 10 * time.Minute

	// RedisKeyspace separa los tokens de otras claves bajo el mismo prefijo raíz.
	RedisKeyspace = "pwreset:"
)

// RedisStore comparte tokens entre réplicas. Las claves son sha256(id):
// el token en claro nunca se persiste.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	opts   options
}

func NewRedisStore(rdb redis.UniversalClient, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = RedisKeyspace
	}
	return &RedisStore{rdb: rdb, prefix: prefix, opts: buildOptions(opts)}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + tokens.SHA256Hex(id)
}

// record es lo que se guarda; el id se omite.
type record struct {
	Email       string             `json:"email"`
	Username    string             `json:"username"`
	TenantClass domain.TenantClass `json:"tenantClass"`
	IssuedAt    time.Time          `json:"issuedAt"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Used        bool               `json:"used"`
}

func (r record) token(id string) domain.ResetToken {
	return domain.ResetToken{
		ID: id, Email: r.Email, Username: r.Username, TenantClass: r.TenantClass,
		IssuedAt: r.IssuedAt, ExpiresAt: r.ExpiresAt, Used: r.Used,
	}
}

// errForeignKey marca claves del prefijo que no son registros de token.
var errForeignKey = errors.New("not a reset token record")

func redisErr(err error) error {
	return domain.Upstream("redis", true, err)
}

func (s *RedisStore) Issue(ctx context.Context, in IssueInput) (string, error) {
	id, err := s.opts.newID()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	now := s.opts.now()
	rec := record{
		Email: in.Email, Username: in.Username, TenantClass: in.TenantClass,
		IssuedAt: now, ExpiresAt: now.Add(s.opts.ttl),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	ok, err := s.rdb.SetNX(ctx, s.key(id), data, s.opts.ttl+expiredGrace).Result()
	if err != nil {
		return "", redisErr(err)
	}
	if !ok {
		return "", fmt.Errorf("generate reset token: duplicate id")
	}
	return id, nil
}

// stringGetter lo cumplen el cliente y *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, g stringGetter, key string) (record, error) {
	data, err := g.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return record{}, domain.TokenError(domain.TokenInvalid)
	}
	if err != nil && strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return record{}, fmt.Errorf("%w: %v", errForeignKey, err)
	}
	if err != nil {
		return record{}, redisErr(err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("decode reset token: %w: %v", errForeignKey, err)
	}
	return rec, nil
}

func (s *RedisStore) Peek(ctx context.Context, id string) (domain.ResetToken, error) {
	rec, err := s.get(ctx, s.rdb, s.key(id))
	if err != nil {
		return domain.ResetToken{}, err
	}
	t := rec.token(id)
	if err := t.Check(s.opts.now()); err != nil {
		return domain.ResetToken{}, err
	}
	return t, nil
}

// setUsed hace el check-and-set bajo WATCH; reintenta si otra transacción tocó la clave.
func (s *RedisStore) setUsed(ctx context.Context, id string, used bool) (domain.ResetToken, error) {
	key := s.key(id)
	for i := 0; i < redisMaxRetries; i++ {
		var out domain.ResetToken
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			rec, err := s.get(ctx, tx, key)
			if err != nil {
				return err
			}
			t := rec.token(id)
			if used {
				if err := t.Check(s.opts.now()); err != nil {
					return err
				}
			}
			rec.Used = used
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, redis.KeepTTL)
				return nil
			})
			if err != nil {
				return err
			}
			out = rec.token(id)
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			var de *domain.Error
			if errors.As(err, &de) {
				return domain.ResetToken{}, err
			}
			return domain.ResetToken{}, redisErr(err)
		}
		return out, nil
	}
	return domain.ResetToken{}, redisErr(errors.New("reset token contention"))
}

func (s *RedisStore) BeginRedeem(ctx context.Context, id string) (domain.ResetToken, error) {
	return s.setUsed(ctx, id, true)
}

func (s *RedisStore) Revert(ctx context.Context, id string) error {
	_, err := s.setUsed(ctx, id, false)
	if errors.Is(err, domain.ErrTokenInvalid) {
		return nil
	}
	return err
}

func (s *RedisStore) Finalize(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return redisErr(err)
	}
	return nil
}

// scan recorre todas las claves del prefijo. Las que no decodifican como
// registro se saltan.
func (s *RedisStore) scan(ctx context.Context, fn func(key string, rec record) error) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		rec, err := s.get(ctx, s.rdb, iter.Val())
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, errForeignKey) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(iter.Val(), rec); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return redisErr(err)
	}
	return nil
}

// SweepExpired borra las claves vencidas que siguen vivas por expiredGrace.
// Redis expira el resto por TTL.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	now := s.opts.now()
	var expired []string
	err := s.scan(ctx, func(key string, rec record) error {
		if rec.ExpiresAt.Before(now) {
			expired = append(expired, key)
		}
		return nil
	})
	if err != nil || len(expired) == 0 {
		return 0, err
	}
	n, err := s.rdb.Del(ctx, expired...).Result()
	if err != nil {
		return 0, redisErr(err)
	}
	return int(n), nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var all []domain.ResetToken
	err := s.scan(ctx, func(_ string, rec record) error {
		all = append(all, rec.token(""))
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return countStats(s.opts.now(), all), nil
}
