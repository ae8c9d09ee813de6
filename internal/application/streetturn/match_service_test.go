package streetturn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type mockCandidateRepository struct {
	mock.Mock
}

func (m *mockCandidateRepository) FindImportCandidates(ctx context.Context, terminals []string) ([]streetturn.ImportCandidate, error) {
	args := m.Called(ctx, terminals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]streetturn.ImportCandidate), args.Error(1)
}

func (m *mockCandidateRepository) FindExportCandidates(ctx context.Context, cutoffAfter time.Time) ([]streetturn.ExportCandidate, error) {
	args := m.Called(ctx, cutoffAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]streetturn.ExportCandidate), args.Error(1)
}

func (m *mockCandidateRepository) RegisterExportBooking(ctx context.Context, booking streetturn.ExportCandidate) (streetturn.ExportCandidate, error) {
	args := m.Called(ctx, booking)
	return args.Get(0).(streetturn.ExportCandidate), args.Error(1)
}

// Test helpers

func mustMoney(t *testing.T, amount int64) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoney(decimal.NewFromInt(amount), valueobject.USD)
	require.NoError(t, err)
	return m
}

func testMatcherConfig(t *testing.T) streetturn.MatcherConfig {
	t.Helper()
	return streetturn.MatcherConfig{
		SameTerminalSavings:      mustMoney(t, 400),
		DifferentTerminalSavings: mustMoney(t, 250),
		RequireTypeMatch:         true,
	}
}

func importAt(t *testing.T, terminal string, lastFreeDay *time.Time) streetturn.ImportCandidate {
	t.Helper()
	number, err := valueobject.NewContainerNumber("CSQU3054383")
	require.NoError(t, err)
	return streetturn.ImportCandidate{
		ShipmentID:      uuid.New(),
		ContainerNumber: number,
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusReleased,
		Terminal:        terminal,
		LastFreeDay:     lastFreeDay,
	}
}

func exportAt(terminal string) streetturn.ExportCandidate {
	return streetturn.ExportCandidate{
		ShipmentID:    uuid.New(),
		BookingNumber: "BKG-" + terminal,
		Size:          valueobject.Size40HC,
		Type:          valueobject.TypeDry,
		Terminal:      terminal,
	}
}

func dateAt(day int) *time.Time {
	d := time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// ============================================
// Candidate discovery
// ============================================

func TestFindCandidates(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	imports := []streetturn.ImportCandidate{importAt(t, "APM", dateAt(10))}
	exports := []streetturn.ExportCandidate{exportAt("APM")}
	repo.On("FindImportCandidates", mock.Anything, mock.Anything).Return(imports, nil)
	repo.On("FindExportCandidates", mock.Anything, mock.Anything).Return(exports, nil)

	result, err := service.FindCandidates(context.Background(), MatchRequest{})

	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, streetturn.MatchTypeSameTerminal, result.Candidates[0].MatchType)
	assert.Equal(t, 1, result.ImportCount)
	assert.Equal(t, 1, result.ExportCount)
}

func TestFindCandidates_OrderedByLastFreeDay(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	late := importAt(t, "APM", dateAt(20))
	urgent := importAt(t, "APM", dateAt(5))
	noLFD := importAt(t, "APM", nil)

	repo.On("FindImportCandidates", mock.Anything, mock.Anything).
		Return([]streetturn.ImportCandidate{late, noLFD, urgent}, nil)
	repo.On("FindExportCandidates", mock.Anything, mock.Anything).
		Return([]streetturn.ExportCandidate{exportAt("APM")}, nil)

	result, err := service.FindCandidates(context.Background(), MatchRequest{})

	require.NoError(t, err)
	require.Len(t, result.Candidates, 3)
	assert.Equal(t, urgent.ShipmentID, result.Candidates[0].Import.ShipmentID)
	assert.Equal(t, late.ShipmentID, result.Candidates[1].Import.ShipmentID)
	assert.Nil(t, result.Candidates[2].Import.LastFreeDay, "missing last free day sorts last")
}

func TestFindCandidates_EmptyPools(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	repo.On("FindImportCandidates", mock.Anything, mock.Anything).
		Return([]streetturn.ImportCandidate{}, nil)
	repo.On("FindExportCandidates", mock.Anything, mock.Anything).
		Return([]streetturn.ExportCandidate{}, nil)

	result, err := service.FindCandidates(context.Background(), MatchRequest{})

	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Zero(t, result.ImportCount)
}

func TestFindCandidates_ScopesTerminalsAndCutoff(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	terminals := []string{"APM", "LBCT"}

	repo.On("FindImportCandidates", mock.Anything, terminals).
		Return([]streetturn.ImportCandidate{}, nil)
	repo.On("FindExportCandidates", mock.Anything, asOf).
		Return([]streetturn.ExportCandidate{}, nil)

	_, err = service.FindCandidates(context.Background(), MatchRequest{
		Terminals: terminals,
		AsOf:      asOf,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFindCandidates_RepositoryError(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	repo.On("FindImportCandidates", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err = service.FindCandidates(context.Background(), MatchRequest{})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "FindExportCandidates", mock.Anything, mock.Anything)
}

// ============================================
// Booking registration
// ============================================

func TestRegisterBooking(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	cutoff := time.Date(2026, 2, 20, 16, 0, 0, 0, time.UTC)
	expected := streetturn.ExportCandidate{
		ShipmentID:    uuid.New(),
		BookingNumber: "BKG-88021",
		Size:          valueobject.Size40HC,
		Type:          valueobject.TypeDry,
		Terminal:      "LBCT",
		PortCutoff:    &cutoff,
	}
	repo.On("RegisterExportBooking", mock.Anything, mock.MatchedBy(func(b streetturn.ExportCandidate) bool {
		return b.BookingNumber == "BKG-88021" && b.Size == valueobject.Size40HC
	})).Return(expected, nil)

	booking, err := service.RegisterBooking(context.Background(), RegisterBookingRequest{
		BookingNumber: "BKG-88021",
		Size:          "40HC",
		Type:          "DRY",
		Terminal:      "LBCT",
		PortCutoff:    &cutoff,
	})

	require.NoError(t, err)
	assert.Equal(t, expected.ShipmentID, booking.ShipmentID)
	repo.AssertExpectations(t)
}

func TestRegisterBooking_InvalidSize(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	_, err = service.RegisterBooking(context.Background(), RegisterBookingRequest{
		BookingNumber: "BKG-88022",
		Size:          "53FT",
		Type:          "DRY",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "RegisterExportBooking", mock.Anything, mock.Anything)
}

func TestRegisterBooking_CutoffsInOrder(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	docCutoff := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
	portCutoff := time.Date(2026, 2, 20, 16, 0, 0, 0, time.UTC)
	repo.On("RegisterExportBooking", mock.Anything, mock.MatchedBy(func(b streetturn.ExportCandidate) bool {
		return b.DocCutoff != nil && b.DocCutoff.Equal(docCutoff)
	})).Return(streetturn.ExportCandidate{}, nil)

	_, err = service.RegisterBooking(context.Background(), RegisterBookingRequest{
		BookingNumber: "BKG-88023",
		Size:          "40HC",
		Type:          "DRY",
		Terminal:      "LBCT",
		DocCutoff:     &docCutoff,
		PortCutoff:    &portCutoff,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegisterBooking_PortCutoffBeforeDocCutoff(t *testing.T) {
	repo := new(mockCandidateRepository)
	service, err := NewMatchService(repo, testMatcherConfig(t))
	require.NoError(t, err)

	docCutoff := time.Date(2026, 2, 20, 16, 0, 0, 0, time.UTC)
	portCutoff := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

	_, err = service.RegisterBooking(context.Background(), RegisterBookingRequest{
		BookingNumber: "BKG-88024",
		Size:          "40HC",
		Type:          "DRY",
		DocCutoff:     &docCutoff,
		PortCutoff:    &portCutoff,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeRangeValidation, domainErr.Code)
	repo.AssertNotCalled(t, "RegisterExportBooking", mock.Anything, mock.Anything)
}

// ============================================
// Configuration
// ============================================

func TestNewMatchService_RejectsInvalidConfig(t *testing.T) {
	cfg := testMatcherConfig(t)
	cfg.SameTerminalSavings = mustMoney(t, 100) // below different-terminal savings

	_, err := NewMatchService(new(mockCandidateRepository), cfg)
	assert.Error(t, err)
}
