package intent

import (
	"testing"

	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(v int64) *int64    { return &v }

func TestAction_IsValid(t *testing.T) {
	assert.True(t, ActionRecordPayment.IsValid())
	assert.True(t, ActionCheckStatus.IsValid())
	assert.True(t, ActionUnknown.IsValid())
	assert.False(t, Action("delete_payment").IsValid())
	assert.False(t, Action("").IsValid())
}

func TestExtractedIntent_Slots(t *testing.T) {
	t.Run("all slots present", func(t *testing.T) {
		p := rental.Period("2024-12")
		in := &ExtractedIntent{
			Action:     ActionRecordPayment,
			TenantName: strPtr("John"),
			Amount:     intPtr(600000),
			Period:     &p,
		}
		assert.True(t, in.HasTenant())
		assert.True(t, in.HasAmount())
		assert.Equal(t, "John", in.Tenant())
		assert.Equal(t, int64(600000), in.AmountOrZero())
		assert.Equal(t, rental.Period("2024-12"), in.PeriodOr("2026-10"))
	})

	t.Run("absent slots", func(t *testing.T) {
		in := &ExtractedIntent{Action: ActionCheckStatus}
		assert.False(t, in.HasTenant())
		assert.False(t, in.HasAmount())
		assert.Equal(t, "", in.Tenant())
		assert.Equal(t, int64(0), in.AmountOrZero())
		assert.Equal(t, rental.Period("2026-10"), in.PeriodOr("2026-10"))
	})

	t.Run("empty name and zero amount count as absent", func(t *testing.T) {
		in := &ExtractedIntent{TenantName: strPtr(""), Amount: intPtr(0)}
		assert.False(t, in.HasTenant())
		assert.False(t, in.HasAmount())
	})
}
