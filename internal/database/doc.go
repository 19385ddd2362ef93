// Package database owns the SQLite connection of the reading list.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, schema migration, seed data
//	├── books/           # Book CRUD operations
//	└── importruns/      # Import run history
//
// There is exactly one *Database per process. It is constructed explicitly
// and handed to the repositories that need it:
//
//	db, err := database.NewDatabase("./readinglist.db")
//	repo := books.NewRepository(db.DB)
//	all, err := repo.ListAll(ctx)
//
// NewDatabase runs Initialize, which migrates the schema and inserts the
// sample books inside a single transaction when the books table is empty.
package database
