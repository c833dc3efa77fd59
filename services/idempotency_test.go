package services

import (
	"context"
	"testing"

	"github.com/signworks/orderflow-api/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIdempotencyValue(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		wantOrder       uint
		wantFingerprint string
		wantOK          bool
	}{
		{"status change", "12|status:cutout_pending", 12, "status:cutout_pending", true},
		{"assignment", "7|assign:3", 7, "assign:3", true},
		{"fingerprint with separator", "7|a|b", 7, "a|b", true},
		{"missing separator", "12", 0, "", false},
		{"non numeric order", "abc|status:paid", 0, "", false},
		{"negative order", "-1|status:paid", 0, "", false},
		{"empty", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID, fingerprint, ok := splitIdempotencyValue(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOrder, orderID)
			assert.Equal(t, tt.wantFingerprint, fingerprint)
		})
	}
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "idem:order:transition:req-1", idempotencyKey("req-1"))
}

func TestGetIdempotencyCache_DefaultsToNoop(t *testing.T) {
	previous := idempotencyCacheInstance
	t.Cleanup(func() { SetIdempotencyCache(previous) })

	SetIdempotencyCache(nil)
	cache := GetIdempotencyCache()
	require.NotNil(t, cache)

	ctx := context.Background()
	require.NoError(t, cache.Remember(ctx, "req-1", 1, "status:graphics_in_progress"))
	_, _, found, err := cache.Lookup(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, found, "the no-op cache never remembers anything")
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, dedupeUsers([]uint{3, 0, 1, 3, 2, 1}))
	assert.Empty(t, dedupeUsers(nil))

	roles := dedupeRoles([]workflow.AccountType{workflow.SuperAdmin, "", workflow.Graphics, workflow.SuperAdmin, workflow.Admin})
	assert.Equal(t, []workflow.AccountType{workflow.SuperAdmin, workflow.Graphics, workflow.Admin}, roles)
}

func TestRateOrDefault(t *testing.T) {
	rate, err := rateOrDefault(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultGSTRate, rate)

	custom := 14.0
	rate, err = rateOrDefault(&custom)
	require.NoError(t, err)
	assert.Equal(t, 14.0, rate)

	negative := -1.0
	_, err = rateOrDefault(&negative)
	assert.ErrorIs(t, err, ErrValidation)

	huge := 140.0
	_, err = rateOrDefault(&huge)
	assert.ErrorIs(t, err, ErrValidation)
}
