package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"comedor/internal/config"
	"comedor/internal/db"
	"comedor/models"
)

func main() {
	csvPath := "ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			return upsertIngredient(tx, record)
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["name"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// upsertIngredient creates or refreshes one catalog entry, matching by name.
func upsertIngredient(tx *gorm.DB, record map[string]string) error {
	name := strings.TrimSpace(record["name"])
	if name == "" {
		return errors.New("missing ingredient name")
	}

	ingredient := models.Ingredient{
		Name:         name,
		Unit:         normalizeUnit(record["unit"]),
		PricePerUnit: parsePrice(record["price_per_unit"]),
	}

	if providerName := strings.TrimSpace(record["provider"]); providerName != "" {
		providerID, err := resolveProvider(tx, providerName)
		if err != nil {
			return fmt.Errorf("resolve provider %q: %w", providerName, err)
		}
		ingredient.ProviderID = &providerID
	}

	var existing models.Ingredient
	err := tx.Where("name = ?", name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient %q: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("find ingredient %q: %w", name, err)
	}

	updates := map[string]any{
		"unit":           ingredient.Unit,
		"price_per_unit": ingredient.PricePerUnit,
	}
	if ingredient.ProviderID != nil {
		updates["provider_id"] = ingredient.ProviderID
	}
	if err := tx.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("update ingredient %q: %w", name, err)
	}
	return nil
}

func resolveProvider(tx *gorm.DB, name string) (uint, error) {
	var provider models.Provider
	err := tx.Where("name = ?", name).First(&provider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		provider = models.Provider{Name: name}
		if err := tx.Create(&provider).Error; err != nil {
			return 0, err
		}
		return provider.ID, nil
	}
	if err != nil {
		return 0, err
	}
	return provider.ID, nil
}

func normalizeUnit(value string) string {
	unit := strings.ToLower(strings.TrimSpace(value))
	if unit == "" {
		return "kg"
	}
	return unit
}

func parsePrice(value string) float64 {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "$"))
	if trimmed == "" {
		return 0
	}
	price, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for i, column := range rows[0] {
		header[i] = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(column), " ", "_"))
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		if strings.TrimSpace(record["name"]) == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
