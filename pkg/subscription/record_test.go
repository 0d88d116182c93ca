package subscription

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() rawRecord {
	subID := "sub_123"
	custID := "cus_123"
	now := time.Now().UTC()
	return rawRecord{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		ProviderCustomerID: &custID,
		ProviderSubID:      &subID,
		Status:             "active",
		PlanType:           "monthly",
		AmountPaid:         999,
		Currency:           "EUR",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	t.Run("valid row decodes", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		rec, err := decodeRecord(raw)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, rec.Status)
		assert.Equal(t, PlanMonthly, rec.PlanType)
		assert.Equal(t, "cus_123", rec.ProviderCustomerID)
		assert.Equal(t, "sub_123", rec.ProviderSubID)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Status = "suspended"
		_, err := decodeRecord(raw)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("unknown plan type is rejected", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.PlanType = "weekly"
		_, err := decodeRecord(raw)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("missing user ID is rejected", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.UserID = uuid.Nil
		_, err := decodeRecord(raw)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("paid status without provider subscription is rejected", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{"active", "past_due", "canceled"} {
			raw := validRaw()
			raw.Status = status
			raw.ProviderSubID = nil
			_, err := decodeRecord(raw)
			assert.ErrorIs(t, err, ErrInvalidRecord, "status %s", status)
		}
	})

	t.Run("trialing without provider identifiers is fine", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Status = "trialing"
		raw.ProviderSubID = nil
		raw.ProviderCustomerID = nil
		rec, err := decodeRecord(raw)
		require.NoError(t, err)
		assert.Empty(t, rec.ProviderSubID)
		assert.Empty(t, rec.ProviderCustomerID)
	})
}
