package trash

import (
	"context"
	"time"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/models"
)

// Report summarizes one sweep run.
type Report struct {
	Purged map[Kind]int `json:"purged"`
	Failed map[Kind]int `json:"failed"`
}

// Total returns the number of entities purged across all kinds.
func (r Report) Total() int {
	total := 0
	for _, n := range r.Purged {
		total += n
	}
	return total
}

// Sweep permanently deletes every trashed entity of both kinds whose
// deleted_at has aged past the retention window. Each entity is purged in its
// own transaction; a failure on one entity is logged and counted but does not
// abort the rest of the sweep.
func Sweep(ctx context.Context, db *gorm.DB, now time.Time) (Report, error) {
	report := Report{
		Purged: make(map[Kind]int),
		Failed: make(map[Kind]int),
	}
	cutoff := now.Add(-RetentionWindow)

	for _, kind := range []Kind{KindRecipe, KindProjection} {
		entry := registry[kind]

		var ids []uint
		err := db.WithContext(ctx).Model(entry.model()).
			Where("status = ? AND deleted_at < ?", models.StatusDeleted, cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return report, err
		}

		for _, id := range ids {
			err := PermanentDelete(ctx, db, kind, id, false, now)
			if err != nil {
				// A concurrent restore between the candidate query and the
				// purge is not a failure; the entity simply left the trash.
				if fault.IsKind(err, fault.KindNotInTrash) {
					continue
				}
				applog.Error(ctx, "sweep failed to purge entity", "kind", string(kind), "id", id, "error", err)
				report.Failed[kind]++
				continue
			}
			report.Purged[kind]++
		}
	}

	applog.Info(ctx, "trash sweep finished",
		"recipesPurged", report.Purged[KindRecipe],
		"projectionsPurged", report.Purged[KindProjection],
		"failed", report.Failed[KindRecipe]+report.Failed[KindProjection],
	)
	return report, nil
}
