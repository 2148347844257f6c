package projection

import (
	"testing"

	"comedor/internal/fault"
)

func TestValidateSharesCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		shares []ShareInput
		want   fault.Kind
	}{
		{"empty", nil, fault.KindInvalidShareCount},
		{"single", []ShareInput{{RecipeID: 1, Percentage: 100}}, fault.KindInvalidShareCount},
		{"four", []ShareInput{
			{RecipeID: 1, Percentage: 25},
			{RecipeID: 2, Percentage: 25},
			{RecipeID: 3, Percentage: 25},
			{RecipeID: 4, Percentage: 25},
		}, fault.KindInvalidShareCount},
		{"two valid", []ShareInput{
			{RecipeID: 1, Percentage: 60},
			{RecipeID: 2, Percentage: 40},
		}, ""},
		{"three valid", []ShareInput{
			{RecipeID: 1, Percentage: 50},
			{RecipeID: 2, Percentage: 30},
			{RecipeID: 3, Percentage: 20},
		}, ""},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateShares(tt.shares)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("ValidateShares returned %v, want nil", err)
				}
				return
			}
			if !fault.IsKind(err, tt.want) {
				t.Fatalf("ValidateShares returned %v, want kind %q", err, tt.want)
			}
		})
	}
}

func TestValidateSharesPercentageRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		percentages []int
		ok          bool
	}{
		{"boundaries", []int{0, 100}, true},
		{"negative balanced by overshoot", []int{150, -50}, false},
		{"negative three way", []int{120, -10, -10}, false},
		{"over hundred", []int{101, -1}, false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			shares := make([]ShareInput, 0, len(tt.percentages))
			for i, p := range tt.percentages {
				shares = append(shares, ShareInput{RecipeID: uint(i + 1), Percentage: p})
			}
			err := ValidateShares(shares)
			if tt.ok && err != nil {
				t.Fatalf("ValidateShares returned %v, want nil", err)
			}
			if !tt.ok && !fault.IsKind(err, fault.KindInvalidPercentage) {
				t.Fatalf("ValidateShares returned %v, want kind %q", err, fault.KindInvalidPercentage)
			}
		})
	}
}

func TestValidateSharesPercentageSum(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		percentages []int
		ok          bool
	}{
		{"exact hundred", []int{60, 40}, true},
		{"three way", []int{40, 35, 25}, true},
		{"over", []int{70, 40}, false},
		{"under", []int{50, 40}, false},
		{"zero heavy", []int{100, 0}, true},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			shares := make([]ShareInput, 0, len(tt.percentages))
			for i, p := range tt.percentages {
				shares = append(shares, ShareInput{RecipeID: uint(i + 1), Percentage: p})
			}
			err := ValidateShares(shares)
			if tt.ok && err != nil {
				t.Fatalf("ValidateShares returned %v, want nil", err)
			}
			if !tt.ok && !fault.IsKind(err, fault.KindPercentageSum) {
				t.Fatalf("ValidateShares returned %v, want kind %q", err, fault.KindPercentageSum)
			}
		})
	}
}
