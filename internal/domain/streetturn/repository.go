package streetturn

import (
	"context"
	"time"
)

// CandidateRepository supplies the matcher with stable snapshots of the
// operational data. Implementations live in the persistence layer; the
// matcher itself performs no I/O.
type CandidateRepository interface {
	// FindImportCandidates returns import containers at the given terminals
	// (all terminals when empty), regardless of customs status. The matcher
	// filters on RELEASED itself so callers can report near-miss volume.
	FindImportCandidates(ctx context.Context, terminals []string) ([]ImportCandidate, error)

	// FindExportCandidates returns export bookings still needing an empty
	// container, excluding bookings whose port cutoff precedes the given
	// time.
	FindExportCandidates(ctx context.Context, cutoffAfter time.Time) ([]ExportCandidate, error)

	// RegisterExportBooking adds an export booking to the candidate pool.
	// The ShipmentID is assigned by the implementation.
	RegisterExportBooking(ctx context.Context, booking ExportCandidate) (ExportCandidate, error)
}
