package models

import "strings"

// Lifecycle status shared by recipes and projections. DeletedAt must be set
// exactly when Status is StatusDeleted.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Meal periods a recipe or projection can be planned for.
const (
	PeriodBreakfast = "breakfast"
	PeriodLunch     = "lunch"
)

// ValidPeriod reports whether the value names a known meal period.
func ValidPeriod(value string) bool {
	switch value {
	case PeriodBreakfast, PeriodLunch:
		return true
	}
	return false
}

// NormalizePeriod lowercases and trims a meal period token. It does not
// substitute a default; unknown values are left for validation to reject.
func NormalizePeriod(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
