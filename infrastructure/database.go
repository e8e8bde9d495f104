package infrastructure

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hiring-pipeline/domain"
)

// OpenDatabase connects to postgres when a DSN is configured and falls
// back to a local sqlite file otherwise, then migrates the schema.
func OpenDatabase(databaseURL, sqlitePath string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqlitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Candidate{}, &domain.HumanReview{}, &domain.EmailLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database ready", zap.String("driver", dialector.Name()))
	return db, nil
}
