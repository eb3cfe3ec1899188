package pg

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.ErrorIs(t, err, repository.ErrNoDatabase)
}

func TestWithKey(t *testing.T) {
	d := withKey("sub-9", nil)
	assert.Equal(t, "sub-9", d.SubjectID())
	d = withKey("sub-9", map[string]any{"userId": "stale", "plan": "pro"})
	assert.Equal(t, "sub-9", d.SubjectID())
	assert.Equal(t, "pro", d["plan"])
}

// Requiere Postgres: PG_TEST_DSN=postgres://...
func TestProfileRepoIntegration(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	ctx := context.Background()
	r, err := Open(ctx, Config{DSN: dsn, Table: "profiles_test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = r.pool.Exec(context.Background(), `DROP TABLE IF EXISTS profiles_test`)
		r.Close()
	})

	_, err = r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS profiles_test (user_id text PRIMARY KEY, doc jsonb NOT NULL DEFAULT '{}')`)
	require.NoError(t, err)
	_, err = r.pool.Exec(ctx, `INSERT INTO profiles_test (user_id, doc) VALUES ('sub-1', '{"company":"Acme"}')`)
	require.NoError(t, err)

	d, err := r.FindByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", d["company"])

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := r.DeleteByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.FindByKey(ctx, "sub-1")
	assert.True(t, repository.IsNotFound(err))
}
