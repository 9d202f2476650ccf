package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Config is shared by the postgres connection and the sqlite test
// databases. Timestamps follow the service clock so they are stored in UTC.
func Config(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return services.Now()
		},
	}
}

func ConnectDatabase(dsn string, debug bool) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), Config(debug))

	if err != nil {
		return err
	}

	return nil
}

// Use installs an already opened connection, e.g. the sqlite database
// used by tests.
func Use(conn *gorm.DB) {
	DB = conn
}

func MigrateDatabase() error {
	if err := DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
