package resolve

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/stretchr/testify/assert"
)

func rfaBid(team int64, amount int64, incumbent *int64) *models.Bid {
	return &models.Bid{
		BidID:           uuid.New(),
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  team,
		BidAmount:       amount,
		IncumbentTeamID: incumbent,
	}
}

func TestEffectiveAmount_Incumbent(t *testing.T) {
	rules := DefaultRules()
	incumbent := int64(1)

	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{"zero bid still gets the floor", 0, 2},
		{"low bid hits the floor", 5, 7},   // 20% of 5 = 1, floor 2 applies
		{"floor boundary", 10, 12},         // 20% of 10 = 2 = floor
		{"percentage above floor", 50, 60}, // 20% of 50 = 10
		{"rounding half up", 13, 16},       // 20% of 13 = 2.6 -> 3
		{"rounding down", 12, 14},          // 20% of 12 = 2.4 -> 2, equals floor
		{"large bid", 200, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bid := rfaBid(1, tt.amount, &incumbent)
			assert.Equal(t, tt.want, rules.EffectiveAmount(bid))
		})
	}
}

func TestEffectiveAmount_NonIncumbent(t *testing.T) {
	rules := DefaultRules()
	incumbent := int64(1)

	bid := rfaBid(2, 50, &incumbent)
	assert.Equal(t, int64(50), rules.EffectiveAmount(bid))

	// No tag holder at all
	untagged := rfaBid(2, 50, nil)
	assert.Equal(t, int64(50), rules.EffectiveAmount(untagged))
}

func TestEffectiveAmount_BoostOnlyAppliesToRFA(t *testing.T) {
	rules := DefaultRules()
	incumbent := int64(1)

	waiver := rfaBid(1, 50, &incumbent)
	waiver.ClaimType = models.ClaimWaiver
	assert.Equal(t, int64(50), rules.EffectiveAmount(waiver))

	transition := rfaBid(1, 50, &incumbent)
	transition.ClaimType = models.ClaimTransition
	assert.Equal(t, int64(50), rules.EffectiveAmount(transition))
}
