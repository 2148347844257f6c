package projection

import (
	"fmt"

	"comedor/internal/fault"
)

// A projection blends at least two and at most three recipes, and the share
// percentages must account for every diner exactly once.
const (
	MinShares       = 2
	MaxShares       = 3
	totalPercentage = 100
)

// ShareInput is a candidate (recipe, percentage) pairing supplied by a caller.
type ShareInput struct {
	RecipeID   uint `json:"recipe_id"`
	Percentage int  `json:"percentage"`
}

// ValidateShares enforces the structural invariants on a candidate share set.
// It is pure: recipe existence is resolved later, at persistence or
// aggregation time.
func ValidateShares(shares []ShareInput) error {
	if len(shares) < MinShares || len(shares) > MaxShares {
		return fault.Field(fault.KindInvalidShareCount, "shares",
			fmt.Sprintf("a projection needs between %d and %d shares, got %d", MinShares, MaxShares, len(shares)))
	}

	sum := 0
	for _, share := range shares {
		if share.Percentage < 0 || share.Percentage > totalPercentage {
			return fault.Field(fault.KindInvalidPercentage, "percentage",
				fmt.Sprintf("share percentage must be between 0 and %d, got %d", totalPercentage, share.Percentage))
		}
		sum += share.Percentage
	}
	if sum != totalPercentage {
		return fault.Field(fault.KindPercentageSum, "percentage",
			fmt.Sprintf("share percentages must sum to exactly %d, got %d", totalPercentage, sum))
	}

	return nil
}
