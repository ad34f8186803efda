package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"finmate/internal/models"
	"finmate/internal/util"

	"gorm.io/gorm"
)

// AutoNotePrefix marks transactions created by the materializer.
const AutoNotePrefix = "[Auto] "

// Materializer turns due recurring templates into concrete transactions.
type Materializer struct {
	DB *gorm.DB
}

func NewMaterializer(db *gorm.DB) *Materializer {
	return &Materializer{DB: db}
}

// Run processes every active template whose next_run_date is on or before
// today. Each template is handled in its own database transaction: the
// inserted row and the advanced next_run_date commit together, so a crash
// mid-batch can neither duplicate nor lose a single template's effect.
// Row failures are logged and the loop continues; an unprocessed template
// simply stays due and is retried on the next scheduled run.
//
// A template that is overdue by several months advances only one month per
// run, catching up at one period per day. See DESIGN.md.
func (m *Materializer) Run(ctx context.Context, now time.Time) (int, error) {
	today := util.DateOnly(now)

	var templates []models.RecurringTransaction
	if err := m.DB.WithContext(ctx).
		Where("is_active = ? AND next_run_date <= ?", true, today).
		Find(&templates).Error; err != nil {
		return 0, fmt.Errorf("query due templates: %w", err)
	}

	processed := 0
	for i := range templates {
		tpl := &templates[i]
		if err := m.materialize(ctx, tpl, today); err != nil {
			log.Printf("materialize template %d: %v", tpl.ID, err)
			continue
		}
		processed++
	}

	log.Printf("materializer run: %d due, %d processed", len(templates), processed)
	return processed, nil
}

// materialize inserts one transaction for the template and advances its
// next_run_date by one calendar month, atomically.
func (m *Materializer) materialize(ctx context.Context, tpl *models.RecurringTransaction, today time.Time) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Transaction{
			UserID:          tpl.UserID,
			CategoryID:      tpl.CategoryID,
			Type:            tpl.Type,
			Amount:          tpl.Amount,
			Note:            AutoNotePrefix + tpl.Note,
			TransactionDate: today,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		next := util.AddOneMonth(tpl.NextRunDate)
		if err := tx.Model(&models.RecurringTransaction{}).
			Where("id = ?", tpl.ID).
			Update("next_run_date", next).Error; err != nil {
			return fmt.Errorf("advance next_run_date: %w", err)
		}
		return nil
	})
}
