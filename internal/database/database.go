package database

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"volunteerhub/internal/domain"

	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" driver
)

// Connect opens the database behind the DSN. Postgres DSNs get the postgres
// driver; anything else (a file path or ":memory:") falls back to SQLite,
// which is what local development and the test suite use.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Info().Msg("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info().Str("dsn", dsn).Msg("using SQLite")
	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

// Migrate creates or updates the tables this subsystem owns or writes to.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.UploadedFile{},
		&domain.PartnershipLog{},
		&domain.ActivityLog{},
	)
}
