package database

import (
	"fmt"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the postgres database behind dsn and prepares it for the repositories.
func Connect(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), NewGormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Prepare(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// NewGormConfig translates driver errors into gorm sentinels (ErrDuplicatedKey et al.)
// and routes slow-query and error logs through logrus.
func NewGormConfig(logger *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Prepare registers the explicit title/genre join model. It must run on every
// fresh *gorm.DB before the Title.Genres association is used.
func Prepare(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.TitleGenre{}); err != nil {
		return fmt.Errorf("setup title_genres join table: %w", err)
	}
	return nil
}

// Migrate creates or updates every table, index and constraint.
func Migrate(db *gorm.DB, logger *logrus.Logger) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
