package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/database"
	"github.com/mrlokans/readinglist/internal/database/books"
	"github.com/mrlokans/readinglist/internal/database/importruns"
	"github.com/mrlokans/readinglist/internal/gutendex"
	"github.com/mrlokans/readinglist/internal/http"
	"github.com/mrlokans/readinglist/internal/scheduler"
	"github.com/mrlokans/readinglist/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store implementations
var _ catalogue.Store = (*books.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// External Services
// =============================================================================

// CandidateSource implementations
var _ catalogue.CandidateSource = (*gutendex.Client)(nil)

// =============================================================================
// Background Import
// =============================================================================

// Importer implementations
var _ tasks.Importer = (*catalogue.Service)(nil)
var _ scheduler.Importer = (*catalogue.Service)(nil)

// ImportQueue implementations
var _ http.ImportQueue = (*tasks.Client)(nil)

// ProgressReporter and ImportHistory implementations
var _ catalogue.ProgressReporter = (*importruns.Repository)(nil)
var _ http.ImportHistory = (*importruns.Repository)(nil)

// ImportSchedule implementations
var _ http.ImportSchedule = (*scheduler.ImportScheduler)(nil)
