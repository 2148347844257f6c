package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "comedor/internal/log"
	"comedor/models"
)

// New returns an in-memory sqlite database seeded with a small kitchen
// catalog: two cooks, a provider, a handful of ingredients, two lunch recipes
// and a blended projection.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:comedor-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredientLine{},
		&models.Projection{},
		&models.ProjectionShare{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("cocina"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Lupe Ramos",
		Email:        "lupe@comedor.app",
		PasswordHash: string(password),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	cook := &models.User{
		Name:         "Dani Ortega",
		Email:        "dani@comedor.app",
		PasswordHash: string(password),
		Role:         models.RoleStaff,
	}
	if err := db.WithContext(ctx).Create(cook).Error; err != nil {
		return err
	}

	mercado := models.Provider{Name: "Mercado Central", Contact: "pedidos@mercadocentral.mx", Phone: "555-0142"}
	if err := db.WithContext(ctx).Create(&mercado).Error; err != nil {
		return err
	}

	tomate := models.Ingredient{Name: "Tomate", Unit: "kg", PricePerUnit: 28.50, ProviderID: &mercado.ID}
	pollo := models.Ingredient{Name: "Pollo", Unit: "kg", PricePerUnit: 89.00, ProviderID: &mercado.ID}
	arroz := models.Ingredient{Name: "Arroz", Unit: "kg", PricePerUnit: 32.00, ProviderID: &mercado.ID}
	tortilla := models.Ingredient{Name: "Tortilla", Unit: "pza", PricePerUnit: 1.20, ProviderID: &mercado.ID}

	ingredients := []*models.Ingredient{&tomate, &pollo, &arroz, &tortilla}
	for _, ingredient := range ingredients {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	tinga := models.Recipe{
		Name:           "Tinga de pollo",
		Classification: "guisado",
		MealPeriod:     models.PeriodLunch,
		BaseDiners:     4,
		Status:         models.StatusActive,
	}
	arrozRojo := models.Recipe{
		Name:           "Arroz rojo",
		Classification: "guarnicion",
		MealPeriod:     models.PeriodLunch,
		BaseDiners:     4,
		Status:         models.StatusActive,
	}

	if err := db.WithContext(ctx).Create(&tinga).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&arrozRojo).Error; err != nil {
		return err
	}

	lines := []models.RecipeIngredientLine{
		{RecipeID: tinga.ID, IngredientID: pollo.ID, Quantity: 1.0},
		{RecipeID: tinga.ID, IngredientID: tomate.ID, Quantity: 0.5},
		{RecipeID: tinga.ID, IngredientID: tortilla.ID, Quantity: 12},
		{RecipeID: arrozRojo.ID, IngredientID: arroz.ID, Quantity: 0.4},
		{RecipeID: arrozRojo.ID, IngredientID: tomate.ID, Quantity: 0.2},
	}

	for _, line := range lines {
		lineCopy := line
		if err := db.WithContext(ctx).Create(&lineCopy).Error; err != nil {
			return err
		}
	}

	semana := models.Projection{
		Name:       "Comida semana 12",
		MealPeriod: models.PeriodLunch,
		Diners:     100,
		Status:     models.StatusActive,
		OwnerID:    admin.ID,
		Shares: []models.ProjectionShare{
			{RecipeID: tinga.ID, Percentage: 60},
			{RecipeID: arrozRojo.ID, Percentage: 40},
		},
	}
	if err := db.WithContext(ctx).Create(&semana).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
