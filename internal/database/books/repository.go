// Package books provides database operations for the reading list.
//
// This package implements the catalogue.Store interface defined in
// internal/catalogue/service.go.
//
// # Interface Implementation
//
//	var _ catalogue.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	id, err := repo.Insert(ctx, "Deep Work", "Cal Newport")
package books

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readinglist/internal/entities"
)

const listOrder = "created_at DESC, id DESC"

// Repository handles all book database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

type Option func(*Repository)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB, opts ...Option) *Repository {
	r := &Repository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAll returns every book, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	if err := r.db.WithContext(ctx).Order(listOrder).Find(&books).Error; err != nil {
		return nil, storeErr("list all", err)
	}
	return books, nil
}

// Insert creates a book in the planning status and returns its ID.
func (r *Repository) Insert(ctx context.Context, title, author string) (uint, error) {
	book := entities.Book{
		Title:     title,
		Author:    author,
		Status:    entities.StatusPlanning,
		CreatedAt: r.now().UnixMilli(),
	}
	if err := r.db.WithContext(ctx).Create(&book).Error; err != nil {
		return 0, storeErr("insert", err)
	}
	return book.ID, nil
}

// UpdateStatus overwrites the status of a book. Missing IDs are ignored.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status entities.Status) error {
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", id).
		Update("status", status).Error
	return storeErr("update status", err)
}

// UpdateFields overwrites title, author and status. Missing IDs are ignored.
func (r *Repository) UpdateFields(ctx context.Context, id uint, title, author string, status entities.Status) error {
	// A map so that an empty author is written instead of skipped
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":  title,
			"author": author,
			"status": status,
		}).Error
	return storeErr("update fields", err)
}

// Delete removes a book. Missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error
	return storeErr("delete", err)
}

// ExistsByTitle reports whether a book with the same title exists (case-insensitive exact match).
func (r *Repository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("LOWER(title) = LOWER(?)", title).
		Count(&count).Error
	if err != nil {
		return false, storeErr("exists by title", err)
	}
	return count > 0, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search filters books by title or author (case-insensitive partial match)
// and optionally by status. Empty arguments match everything.
func (r *Repository) Search(ctx context.Context, query string, status entities.Status) ([]entities.Book, error) {
	tx := r.db.WithContext(ctx).Model(&entities.Book{})
	if query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		tx = tx.Where(`(LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(author) LIKE LOWER(?) ESCAPE '\')`, pattern, pattern)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}

	var books []entities.Book
	if err := tx.Order(listOrder).Find(&books).Error; err != nil {
		return nil, storeErr("search", err)
	}
	return books, nil
}

// CountByStatus returns the number of books in each status.
// Statuses without books are present with a zero count.
func (r *Repository) CountByStatus(ctx context.Context) (map[entities.Status]int64, error) {
	var rows []struct {
		Status entities.Status
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr("count by status", err)
	}

	counts := make(map[entities.Status]int64, len(entities.Statuses))
	for _, s := range entities.Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
