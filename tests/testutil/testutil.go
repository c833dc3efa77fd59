package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/utils"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the password every seeded user gets
const TestPassword = "password123"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test for the duration of the test
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
}

// TestConfig returns a configuration suitable for in-process tests and
// installs it as the current configuration
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:       "sqlite::memory:",
		Port:              "8080",
		GoEnv:             "test",
		JWTSecret:         "integration-secret",
		JWTIssuer:         "orderflow-api",
		JWTAudience:       "orderflow-dashboard",
		TokenTTL:          time.Hour,
		UploadDir:         t.TempDir(),
		MaxUploadMB:       5,
		KafkaTopic:        "order.events",
		OutboxInterval:    time.Second,
		OutboxMaxAttempts: 10,
	}
	previous := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(previous) })
	return cfg
}

// NewTestDB opens a migrated in-memory SQLite database and installs it as
// the current database. One connection keeps the memory database shared.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(previous)
		sqlDB.Close()
	})
	return db
}

// SeedUser creates an active user of the given account type
func SeedUser(t *testing.T, db *gorm.DB, accountType workflow.AccountType, email string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		FirstName:    string(accountType),
		LastName:     "Tester",
		Email:        email,
		PasswordHash: hash,
		AccountType:  accountType,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

// SeedCustomer creates a customer
func SeedCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Name:    name,
		Email:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Company: name + " Pvt Ltd",
		Address: "12 Market Road, Pune",
		GSTIN:   "27ABCDE1234F1Z5",
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("failed to seed customer %s: %v", name, err)
	}
	return customer
}
