package trash

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/models"
)

// RetentionWindow is how long a soft-deleted entity sits in the trash before
// automatic permanent purge is allowed. Shared by recipes and projections.
const RetentionWindow = 84 * 24 * time.Hour // 12 weeks

// Kind selects which entity family a lifecycle operation applies to.
type Kind string

const (
	KindRecipe     Kind = "recipe"
	KindProjection Kind = "projection"
)

// ParseKind maps a route or CLI token to a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "recipe", "recipes":
		return KindRecipe, nil
	case "projection", "projections":
		return KindProjection, nil
	}
	return "", fault.Field(fault.KindInvalid, "kind", fmt.Sprintf("unknown entity kind %q", value))
}

// entityOps adapts one entity family to the shared lifecycle machinery.
type entityOps struct {
	model         func() any
	notFoundKind  fault.Kind
	purgeChildren func(tx *gorm.DB, id uint) error
}

var registry = map[Kind]entityOps{
	KindRecipe: {
		model:        func() any { return &models.Recipe{} },
		notFoundKind: fault.KindRecipeNotFound,
		purgeChildren: func(tx *gorm.DB, id uint) error {
			return tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredientLine{}).Error
		},
	},
	KindProjection: {
		model:        func() any { return &models.Projection{} },
		notFoundKind: fault.KindProjectionNotFound,
		purgeChildren: func(tx *gorm.DB, id uint) error {
			return tx.Where("projection_id = ?", id).Delete(&models.ProjectionShare{}).Error
		},
	},
}

func ops(kind Kind) (entityOps, error) {
	entry, ok := registry[kind]
	if !ok {
		return entityOps{}, fault.Field(fault.KindInvalid, "kind", fmt.Sprintf("unknown entity kind %q", kind))
	}
	return entry, nil
}

// SoftDelete moves an active entity into the trash, stamping deleted_at. The
// transition is a single conditional update so a concurrent writer cannot
// also win. It returns false without error when the entity exists but is not
// active; the entity's state is left untouched in that case.
func SoftDelete(ctx context.Context, db *gorm.DB, kind Kind, id uint) (bool, error) {
	entry, err := ops(kind)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	result := db.WithContext(ctx).Model(entry.model()).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Updates(map[string]any{"status": models.StatusDeleted, "deleted_at": &now})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		applog.Info(ctx, "entity moved to trash", "kind", string(kind), "id", id)
		return true, nil
	}

	if err := mustExist(ctx, db, entry, id); err != nil {
		return false, err
	}
	return false, nil
}

// Restore moves a trashed entity back to active and clears deleted_at. It is
// a silent no-op (false, nil) when the entity is not currently in the trash,
// since restore races with purge from the UI.
func Restore(ctx context.Context, db *gorm.DB, kind Kind, id uint) (bool, error) {
	entry, err := ops(kind)
	if err != nil {
		return false, err
	}

	result := db.WithContext(ctx).Model(entry.model()).
		Where("id = ? AND status = ?", id, models.StatusDeleted).
		Updates(map[string]any{"status": models.StatusActive, "deleted_at": nil})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		applog.Info(ctx, "entity restored from trash", "kind", string(kind), "id", id)
		return true, nil
	}

	if err := mustExist(ctx, db, entry, id); err != nil {
		return false, err
	}
	return false, nil
}

// PermanentDelete removes a trashed entity and its owned child rows in one
// transaction. It fails with not_in_trash when the entity is active, and with
// retention_hold when deleted_at is still within the retention window, unless
// force is set (the manual "empty trash" path).
func PermanentDelete(ctx context.Context, db *gorm.DB, kind Kind, id uint, force bool, now time.Time) error {
	entry, err := ops(kind)
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			Status    string
			DeletedAt *time.Time
		}
		if err := tx.Model(entry.model()).Where("id = ?", id).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(entry.notFoundKind, fmt.Sprintf("%s %d does not exist", kind, id))
			}
			return err
		}

		if row.Status != models.StatusDeleted {
			return fault.New(fault.KindNotInTrash, fmt.Sprintf("%s %d is not in the trash", kind, id))
		}
		if !force {
			if row.DeletedAt == nil || now.Sub(*row.DeletedAt) <= RetentionWindow {
				return fault.New(fault.KindRetentionHold,
					fmt.Sprintf("%s %d is still within the %s retention window", kind, id, RetentionWindow))
			}
		}

		if err := entry.purgeChildren(tx, id); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(entry.model()).Error
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "entity purged", "kind", string(kind), "id", id, "forced", force)
	return nil
}

// Entry is one trashed entity in a deleted listing.
type Entry struct {
	ID        uint       `json:"id"`
	Kind      Kind       `json:"kind"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Filter narrows a deleted listing. Name matches as a case-insensitive
// substring; DeletedOn matches any deletion time on that calendar day (UTC).
type Filter struct {
	Name      string
	DeletedOn *time.Time
}

// ListDeleted returns every trashed entity of one kind, optionally filtered.
func ListDeleted(ctx context.Context, db *gorm.DB, kind Kind, filter Filter) ([]Entry, error) {
	entry, err := ops(kind)
	if err != nil {
		return nil, err
	}

	query := db.WithContext(ctx).Model(entry.model()).
		Where("status = ?", models.StatusDeleted).
		Order("deleted_at desc, id desc")

	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.DeletedOn != nil {
		dayStart := filter.DeletedOn.UTC().Truncate(24 * time.Hour)
		query = query.Where("deleted_at >= ? AND deleted_at < ?", dayStart, dayStart.Add(24*time.Hour))
	}

	var rows []struct {
		ID        uint
		Name      string
		DeletedAt *time.Time
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{ID: row.ID, Kind: kind, Name: row.Name, DeletedAt: row.DeletedAt})
	}
	return entries, nil
}

// mustExist converts a silent no-op into a not-found fault when the entity is
// missing entirely.
func mustExist(ctx context.Context, db *gorm.DB, entry entityOps, id uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(entry.model()).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fault.New(entry.notFoundKind, fmt.Sprintf("entity %d does not exist", id))
	}
	return nil
}
