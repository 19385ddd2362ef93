// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - Store: persistence used by the catalogue service (internal/catalogue/service.go)
//   - Pinger: database liveness for health checks (internal/http/health.go)
//
// ## External Service Interfaces
//
//   - CandidateSource: books offered by a remote catalogue (internal/catalogue/service.go)
//
// ## Background Import Interfaces
//
//   - Importer: runs one catalogue import (internal/tasks, internal/scheduler)
//   - ImportQueue: enqueues imports from the HTTP API (internal/http/config.go)
//   - ImportSchedule: reports the periodic import (internal/http/config.go)
//
// # Adding a New Remote Catalogue
//
// To import from a source other than Gutendex (e.g., Open Library):
//
//  1. Implement CandidateSource in its own package under internal/
//
//     type OpenLibraryClient struct {
//         httpClient *http.Client
//     }
//
//     func (c *OpenLibraryClient) FetchCandidates(ctx context.Context) ([]catalogue.Candidate, error)
//
//     var _ catalogue.CandidateSource = (*OpenLibraryClient)(nil)
//
//  2. Pass it to catalogue.NewService in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the current set.
package interfaces
