package streetturn

import (
	"context"
	"sort"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/drayage/backend/internal/infrastructure/telemetry"
)

// MatchService runs the street-turn matcher over current operational data.
// Matching is advisory: the service proposes pairings and estimated
// savings, and dispatch decides which to act on.
type MatchService struct {
	candidateRepo streetturn.CandidateRepository
	config        streetturn.MatcherConfig
}

// NewMatchService validates the matcher configuration and creates a MatchService
func NewMatchService(candidateRepo streetturn.CandidateRepository, config streetturn.MatcherConfig) (*MatchService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MatchService{
		candidateRepo: candidateRepo,
		config:        config,
	}, nil
}

// MatchRequest scopes a matching run
type MatchRequest struct {
	// Terminals restricts import candidates to the given terminals.
	// Empty means all terminals.
	Terminals []string `json:"terminals,omitempty"`
	// AsOf excludes export bookings whose port cutoff has already passed.
	// Zero means now.
	AsOf time.Time `json:"as_of,omitempty"`
}

// MatchResult is the outcome of one matching run
type MatchResult struct {
	Candidates []streetturn.StreetTurnCandidate `json:"candidates"`
	// ImportCount and ExportCount report the pool sizes the matcher saw,
	// so a thin result can be told apart from a thin pool.
	ImportCount int `json:"import_count"`
	ExportCount int `json:"export_count"`
}

// FindCandidates pairs released import containers with open export
// bookings. Candidates are ordered by the import's last free day, earliest
// first, so the pairings that avert demurrage soonest surface at the top;
// candidates without a last free day sort last.
func (s *MatchService) FindCandidates(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "streetturn", "find_candidates")
	defer span.End()

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	imports, err := s.candidateRepo.FindImportCandidates(ctx, req.Terminals)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	exports, err := s.candidateRepo.FindExportCandidates(ctx, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	candidates := streetturn.FindMatches(imports, exports, s.config)
	sortByUrgency(candidates)

	telemetry.SetAttributes(span,
		"import_count", len(imports),
		"export_count", len(exports),
		"candidate_count", len(candidates),
	)

	return &MatchResult{
		Candidates:  candidates,
		ImportCount: len(imports),
		ExportCount: len(exports),
	}, nil
}

// RegisterBookingRequest adds an export booking to the candidate pool
type RegisterBookingRequest struct {
	BookingNumber string     `json:"booking_number" binding:"required"`
	Size          string     `json:"size" binding:"required"`
	Type          string     `json:"type" binding:"required"`
	Terminal      string     `json:"terminal"`
	DocCutoff     *time.Time `json:"doc_cutoff,omitempty"`
	PortCutoff    *time.Time `json:"port_cutoff,omitempty"`
}

// RegisterBooking records an export booking that still needs an empty
// container, making it visible to subsequent matching runs.
func (s *MatchService) RegisterBooking(ctx context.Context, req RegisterBookingRequest) (*streetturn.ExportCandidate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "streetturn", "register_booking",
		telemetry.WithAttribute("booking_number", req.BookingNumber),
	)
	defer span.End()

	size := valueobject.ContainerSize(req.Size)
	if !size.IsValid() {
		err := shared.NewDomainError("INVALID_CONTAINER_SIZE", "Container size is not recognized")
		telemetry.RecordError(span, err)
		return nil, err
	}
	containerType := valueobject.ContainerType(req.Type)
	if !containerType.IsValid() {
		err := shared.NewDomainError("INVALID_CONTAINER_TYPE", "Container type is not recognized")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := compliance.ValidateExportCutoffs(req.DocCutoff, req.PortCutoff); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	booking, err := s.candidateRepo.RegisterExportBooking(ctx, streetturn.ExportCandidate{
		BookingNumber: req.BookingNumber,
		Size:          size,
		Type:          containerType,
		Terminal:      req.Terminal,
		DocCutoff:     req.DocCutoff,
		PortCutoff:    req.PortCutoff,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &booking, nil
}

// sortByUrgency orders candidates by the import's last free day ascending,
// nil last free days last. Ties keep the matcher's enumeration order.
func sortByUrgency(candidates []streetturn.StreetTurnCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Import.LastFreeDay, candidates[j].Import.LastFreeDay
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
