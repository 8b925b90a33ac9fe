package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/emenu/internal/models"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN est vide, vérifiez la configuration de l'environnement")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Always print masked DSN once for diagnostics (before migrations for visibility)
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)
	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise AutoMigrate (dev convenience)
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "structures", "login_histories"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(db)
	}
	return db, nil
}

// AutoMigrate creates/updates the full schema. Shared by the server and the tests.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range []interface{}{
		&models.User{}, &models.Structure{}, &models.LoginHistory{},
		&models.Plat{}, &models.Menu{}, &models.Avis{},
	} {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// Seed provisions the bootstrap admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
// Idempotent: an existing account with that email is left untouched.
func Seed(db *gorm.DB) {
	email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	pass := os.Getenv("ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return
	}
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	db.Create(&models.User{Email: email, Password: string(hash), Role: models.RoleAdmin, Status: models.StatusActive})
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
