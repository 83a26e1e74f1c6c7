package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
)

type testRoom struct {
	ID     int64
	Number string
}

type testStay struct {
	ID     int64
	RoomID int64
}

func openTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return testDB
}

func TestInit_SQLite(t *testing.T) {
	db, err := Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		Name:         filepath.Join(t.TempDir(), "frontdesk.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	assert.False(t, IsPostgres(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Close())
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "mysql")
}

func TestDialectorFor_Postgres(t *testing.T) {
	d, err := dialectorFor(&config.DatabaseConfig{Host: "localhost", Port: 5432})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestMigrate_SkipsPostgresPatchesOnSQLite(t *testing.T) {
	testDB := openTestDB(t)

	err := Migrate(context.Background(), testDB, Schema{
		Models:          []interface{}{&testRoom{}, &testStay{}},
		PostgresPatches: []string{"THIS IS NOT SQL"},
	})
	require.NoError(t, err)
	assert.True(t, testDB.Migrator().HasTable(&testRoom{}))
	assert.True(t, testDB.Migrator().HasTable(&testStay{}))
}

func TestMissingTables(t *testing.T) {
	testDB := openTestDB(t)
	require.NoError(t, testDB.AutoMigrate(&testRoom{}))

	missing := MissingTables(context.Background(), testDB, []string{"test_rooms", "test_stays"})
	assert.Equal(t, []string{"test_stays"}, missing)
}
