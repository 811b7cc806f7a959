package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// OpenGorm opens the schema-management connection used by migrate and seed.
// Request paths use the pgx pool instead.
func OpenGorm(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, classify(err, "open database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db handle")
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, classify(err, "ping database")
	}
	return db, nil
}

// Migrate creates or updates the sprints and predictions tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.Sprint{}, &models.Prediction{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// SeedDemo inserts DemoSprints when the sprints table is empty and returns
// the number of rows written.
func SeedDemo(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Sprint{}).Count(&count).Error; err != nil {
		return 0, classify(err, "count sprints")
	}
	if count > 0 {
		return 0, nil
	}
	demo := DemoSprints()
	if err := db.WithContext(ctx).CreateInBatches(demo, len(demo)).Error; err != nil {
		return 0, classify(err, "seed sprints")
	}
	return len(demo), nil
}

// DemoSprints is a small labelled history, enough to train a first model.
func DemoSprints() []models.Sprint {
	rows := []struct {
		completed, pending, issues, likert int
		status                             models.SprintStatus
	}{
		{25, 8, 2, 4, models.StatusOnTime},
		{30, 12, 3, 3, models.StatusOnTime},
		{20, 15, 5, 2, models.StatusDelayed},
		{35, 5, 1, 5, models.StatusOnTime},
		{18, 20, 6, 1, models.StatusDelayed},
		{28, 10, 2, 4, models.StatusOnTime},
		{22, 18, 4, 2, models.StatusDelayed},
		{32, 7, 1, 5, models.StatusOnTime},
		{15, 25, 8, 1, models.StatusDelayed},
		{40, 3, 0, 5, models.StatusOnTime},
		{26, 9, 3, 4, models.StatusOnTime},
		{19, 16, 6, 2, models.StatusDelayed},
		{33, 6, 1, 5, models.StatusOnTime},
		{17, 22, 7, 1, models.StatusDelayed},
		{38, 4, 0, 5, models.StatusOnTime},
	}
	sprints := make([]models.Sprint, len(rows))
	for i, r := range rows {
		sprints[i] = models.Sprint{
			SprintMetrics: models.SprintMetrics{
				TasksCompleted: r.completed,
				TasksPending:   r.pending,
				IssuesReported: r.issues,
				LikertScore:    r.likert,
			},
			Status: r.status,
		}
	}
	return sprints
}
