package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

func TestResolve(t *testing.T) {
	r := NewRegistry(
		PoolConfig{Class: domain.Customer, PoolID: "eu-west-1_c", ClientID: "cid", ClientSecret: "sec"},
		PoolConfig{Class: domain.Staff, PoolID: "eu-west-1_s", ClientID: "cid2"},
	)

	p, err := r.Resolve(domain.Customer)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1_c", p.PoolID)

	_, err = r.Resolve(domain.Staff)
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	assert.Contains(t, err.Error(), "client_secret")

	_, err = r.Resolve(domain.Admin)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = r.Resolve(domain.TenantClass("partner"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	assert.Equal(t, []domain.TenantClass{domain.Customer}, r.Classes())
}
