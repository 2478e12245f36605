package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		TokenExpires:      time.Hour,
		RefreshWindow:     7 * 24 * time.Hour,
		ActivationTTL:     30 * time.Minute,
		ActivationReuse:   5 * time.Minute,
		MaxResendAttempts: 3,
		SMSEnabled:        false,
		TestPhones:        []string{"+77777777777"},
		TestCode:          "1111",
	}
}

// fakeSender records delivery calls instead of hitting a gateway.
type fakeSender struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSender) Send(phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, phone+":"+code)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
