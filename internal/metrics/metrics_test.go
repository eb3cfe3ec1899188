package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", ResultLabel(nil))
	assert.Equal(t, "not_found", ResultLabel(domain.NotFound("x")))
	assert.Equal(t, "unknown", ResultLabel(errors.New("boom")))
}

func TestObserveIdPCounts(t *testing.T) {
	before := testutil.ToFloat64(IdPRequests.WithLabelValues("GetIdentity", "staff", "ok"))
	ObserveIdP("GetIdentity", domain.Staff, time.Now(), nil)
	after := testutil.ToFloat64(IdPRequests.WithLabelValues("GetIdentity", "staff", "ok"))
	assert.Equal(t, before+1, after)
}

func TestTokenCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterTokenCollector(reg, func(context.Context) (TokenStats, error) {
		return TokenStats{Total: 3, Active: 1, Expired: 1, Used: 1}, nil
	}))

	n, err := testutil.GatherAndCount(reg, "password_reset_tokens")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
