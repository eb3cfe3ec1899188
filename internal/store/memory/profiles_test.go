package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

func TestProfileRepo(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRepo(
		repository.Document{"userId": "sub-1", "company": "Acme"},
		repository.Document{"company": "orphan"},
	)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	d, err := r.FindByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", d["company"])

	d["company"] = "mutated"
	d2, _ := r.FindByKey(ctx, "sub-1")
	assert.Equal(t, "Acme", d2["company"])

	_, err = r.FindByKey(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))

	n, err := r.DeleteByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = r.DeleteByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
