package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("cutout_pending")
	require.NoError(t, err)
	assert.Equal(t, CutoutPending, s)

	s, err = ParseStatus("  accounts_paid ")
	require.NoError(t, err)
	assert.Equal(t, AccountsPaid, s)

	_, err = ParseStatus("Cutout_Pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestOwnerRole(t *testing.T) {
	expected := map[Status]AccountType{
		GraphicsPending:    Graphics,
		GraphicsInProgress: Graphics,
		GraphicsCompleted:  Admin,
		AdminRejected:      Admin,
		CutoutPending:      Cutout,
		CutoutInProgress:   Cutout,
		CutoutCompleted:    Accounts,
		AccountsPending:    Accounts,
		AccountsBilled:     Accounts,
		AccountsPaid:       Accounts,
		OrderCompleted:     Display,
	}

	require.Len(t, AllStatuses(), len(expected))
	for s, want := range expected {
		got, err := OwnerRole(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, s)
	}

	_, err := OwnerRole("unknown")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatusesOwnedBy(t *testing.T) {
	assert.Equal(t, []Status{CutoutPending, CutoutInProgress}, StatusesOwnedBy(Cutout))
	assert.Equal(t, []Status{GraphicsCompleted, AdminRejected}, StatusesOwnedBy(SuperAdmin))
}

func TestParseAccountType(t *testing.T) {
	at, err := ParseAccountType("cutout")
	require.NoError(t, err)
	assert.Equal(t, Cutout, at)

	_, err = ParseAccountType("Printer")
	assert.Error(t, err)

	assert.True(t, SuperAdmin.IsAdmin())
	assert.True(t, Admin.IsAdmin())
	assert.False(t, Accounts.IsAdmin())
	assert.False(t, AccountType("root").IsValid())
}
