package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"comedor/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var recipes []models.Recipe
	if err := db.WithContext(ctx).Find(&recipes).Error; err != nil {
		t.Fatalf("query recipes: %v", err)
	}
	if len(recipes) == 0 {
		t.Fatal("expected seeded recipes")
	}
	for _, recipe := range recipes {
		if recipe.Status != models.StatusActive || recipe.BaseDiners <= 0 {
			t.Fatalf("seeded recipe violates invariants: %+v", recipe)
		}
	}

	var lines []models.RecipeIngredientLine
	if err := db.WithContext(ctx).Find(&lines).Error; err != nil {
		t.Fatalf("query ingredient lines: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected seeded ingredient lines")
	}

	var projection models.Projection
	if err := db.WithContext(ctx).Preload("Shares").First(&projection).Error; err != nil {
		t.Fatalf("query projection: %v", err)
	}
	sum := 0
	for _, share := range projection.Shares {
		sum += share.Percentage
	}
	if len(projection.Shares) < 2 || len(projection.Shares) > 3 || sum != 100 {
		t.Fatalf("seeded projection violates share invariants: %+v", projection.Shares)
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("cocina")); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
}
