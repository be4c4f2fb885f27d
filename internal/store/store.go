package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned for any single-record lookup that matched nothing.
var ErrNotFound = errors.New("record not found")

// Store wraps the gorm connection. It is constructed once in main and passed
// into each handler, never accessed through a package global.
type Store struct {
	db *gorm.DB
}

// Open connects to postgres when a DSN is given, otherwise to a local sqlite
// file, and runs auto-migration.
func Open(databaseURL, sqlitePath string) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), gormCfg)
	} else {
		logrus.Warnf("DATABASE_URL not set, using sqlite at %s", sqlitePath)
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenTest opens an in-memory sqlite database for tests.
func OpenTest() (*Store, error) {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open test database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&Tenant{},
		&Product{},
		&FAQ{},
		&Lead{},
		&ActivityLog{},
		&WhitelistEntry{},
		&Invoice{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
