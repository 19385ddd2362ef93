package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the reading list database
	DefaultDatabasePath = "./readinglist.db"

	// DefaultImportURL is the base URL of the remote catalogue used by import
	DefaultImportURL = "https://gutendex.com"
)
