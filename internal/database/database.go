package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglist/internal/entities"
)

// Demo rows for a fresh database, in insertion order. Seeds are dated at or
// before the seeding time, so the last one is listed first and anything added
// afterwards lists ahead of all of them.
var defaultSeedBooks = []entities.Book{
	{Title: "Clean Code", Author: "Robert C. Martin", Status: entities.StatusPlanning},
	{Title: "Atomic Habits", Author: "James Clear", Status: entities.StatusReading},
}

type Database struct {
	DB *gorm.DB

	now func() time.Time
}

type Option func(*options)

type options struct {
	logLevel logger.LogLevel
	now      func() time.Time
}

// WithLogLevel sets the gorm logger level (default: Warn).
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// WithClock overrides the time source used for seed timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{logLevel: logger.Warn, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db, now: o.now}

	if err := database.Initialize(context.Background()); err != nil {
		_ = database.Close()
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// Initialize creates the tables if needed and seeds books when empty.
// Both steps share one transaction, so an interrupted first run never
// leaves a partially seeded table. Safe to call on every start.
func (d *Database) Initialize(ctx context.Context) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&entities.Book{}, &entities.ImportRun{}); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if err := d.seedBooks(tx); err != nil {
			return fmt.Errorf("failed to seed books: %w", err)
		}
		return nil
	})
}

func (d *Database) seedBooks(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	base := d.now().UnixMilli()
	for i, seed := range defaultSeedBooks {
		book := seed
		book.CreatedAt = base - int64(len(defaultSeedBooks)-1-i)
		if err := tx.Create(&book).Error; err != nil {
			return fmt.Errorf("failed to create seed book %s: %w", seed.Title, err)
		}
	}
	log.Printf("Seeded %d sample books", len(defaultSeedBooks))
	return nil
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
