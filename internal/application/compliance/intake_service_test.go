package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type mockContainerRepository struct {
	mock.Mock
}

func (m *mockContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*compliance.ContainerRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.ContainerRecord), args.Error(1)
}

func (m *mockContainerRepository) FindByContainerNumber(ctx context.Context, number valueobject.ContainerNumber) (*compliance.ContainerRecord, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.ContainerRecord), args.Error(1)
}

func (m *mockContainerRepository) FindAll(ctx context.Context, filter compliance.ContainerFilter) (shared.Paginated[compliance.ContainerRecord], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[compliance.ContainerRecord]), args.Error(1)
}

func (m *mockContainerRepository) FindStreetTurnEligible(ctx context.Context, terminals []string) ([]*compliance.ContainerRecord, error) {
	args := m.Called(ctx, terminals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compliance.ContainerRecord), args.Error(1)
}

func (m *mockContainerRepository) Save(ctx context.Context, record *compliance.ContainerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockContainerRepository) SaveWithLock(ctx context.Context, record *compliance.ContainerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockContainerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockContainerRepository) CountByCustomsStatus(ctx context.Context, status compliance.CustomsStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// Test helpers

func testWeightRules() compliance.WeightRules {
	return compliance.WeightRules{
		MaxGrossWeightLbs:      decimal.NewFromInt(80000),
		OverweightThresholdLbs: decimal.NewFromInt(44000),
	}
}

func newTestIntakeService(t *testing.T, repo *mockContainerRepository) *IntakeService {
	t.Helper()
	service, err := NewIntakeService(repo, nil, testWeightRules())
	require.NoError(t, err)
	return service
}

func validIntakeRequest() IntakeContainerRequest {
	return IntakeContainerRequest{
		ContainerNumber: "CSQU3054383",
		Size:            "40HC",
		Type:            "DRY",
		CustomsStatus:   "RELEASED",
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}
}

// ============================================
// Intake
// ============================================

func TestIntakeContainer(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*compliance.ContainerRecord")).Return(nil)

	resp, err := service.IntakeContainer(context.Background(), validIntakeRequest())

	require.NoError(t, err)
	assert.Equal(t, "CSQU3054383", resp.ContainerNumber)
	assert.Equal(t, "CSQU", resp.OwnerCode)
	assert.True(t, resp.IsCompliant)
	assert.True(t, resp.StreetTurnEligible)
	assert.Len(t, resp.Validations, 4)
	repo.AssertExpectations(t)
}

func TestIntakeContainer_TerminalLocation(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*compliance.ContainerRecord")).Return(nil)

	lat, lon := 33.7406, -118.2726
	req := validIntakeRequest()
	req.TerminalLat = &lat
	req.TerminalLon = &lon

	resp, err := service.IntakeContainer(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, resp.TerminalLocation)
	assert.Equal(t, lat, resp.TerminalLocation.Latitude())
	assert.Equal(t, lon, resp.TerminalLocation.Longitude())
}

func TestIntakeContainer_TerminalLocationOutOfRange(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	lat, lon := 33.7406, -190.0
	req := validIntakeRequest()
	req.TerminalLat = &lat
	req.TerminalLon = &lon

	_, err := service.IntakeContainer(context.Background(), req)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeRangeValidation, domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIntakeContainer_TerminalLocationHalfSpecified(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	lat := 33.7406
	req := validIntakeRequest()
	req.TerminalLat = &lat

	_, err := service.IntakeContainer(context.Background(), req)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeRangeValidation, domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIntakeContainer_BadCheckDigitRejected(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	req := validIntakeRequest()
	req.ContainerNumber = "CSQU3054380"

	_, err := service.IntakeContainer(context.Background(), req)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CHECK_DIGIT_MISMATCH", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIntakeContainer_DuplicateRejected(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	existing, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusReleased,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}, testWeightRules())
	require.NoError(t, err)

	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(existing, nil)

	_, err = service.IntakeContainer(context.Background(), validIntakeRequest())

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_CONTAINER", domainErr.Code)
}

func TestIntakeContainer_LookupFailurePropagated(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	// A repository failure is not evidence of uniqueness; the intake must
	// surface it rather than proceed to save.
	lookupErr := errors.New("connection reset")
	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(nil, lookupErr)

	_, err := service.IntakeContainer(context.Background(), validIntakeRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIntakeContainer_RuleFailureStillRecorded(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	// Hazmat declared without a UN number: flagged, not rejected.
	req := validIntakeRequest()
	req.IsHazmat = true
	req.HazmatClass = "2.1"

	resp, err := service.IntakeContainer(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, resp.IsCompliant)
	assert.False(t, resp.StreetTurnEligible)
	repo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIntakeContainer_OverweightFlagged(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	repo.On("FindByContainerNumber", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := validIntakeRequest()
	req.GrossWeightLbs = decimal.NewFromInt(46000)

	resp, err := service.IntakeContainer(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.IsOverweight)
	// Under the road maximum, so the weight rule itself passes.
	assert.True(t, resp.IsCompliant)
}

// ============================================
// Customs status and last free day
// ============================================

func TestUpdateCustomsStatus(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	record, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusHold,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}, testWeightRules())
	require.NoError(t, err)
	record.ClearDomainEvents()

	repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
	repo.On("SaveWithLock", mock.Anything, record).Return(nil)

	resp, err := service.UpdateCustomsStatus(context.Background(), record.ID, "RELEASED")

	require.NoError(t, err)
	assert.Equal(t, "RELEASED", resp.CustomsStatus)
	assert.True(t, resp.StreetTurnEligible)
}

func TestUpdateCustomsStatus_InvalidStatus(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	record, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusPending,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}, testWeightRules())
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)

	_, err = service.UpdateCustomsStatus(context.Background(), record.ID, "TELEPORTED")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSetLastFreeDay_RejectsBeforeETA(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	eta := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	record, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusPending,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
		VesselETA:       &eta,
	}, testWeightRules())
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)

	before := eta.AddDate(0, 0, -1)
	_, err = service.SetLastFreeDay(context.Background(), record.ID, &before)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

// ============================================
// Queries
// ============================================

func TestGetContainerByNumber_MalformedNumber(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	_, err := service.GetContainerByNumber(context.Background(), "NOT-A-BOX")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "FindByContainerNumber", mock.Anything, mock.Anything)
}

func TestListContainers(t *testing.T) {
	repo := new(mockContainerRepository)
	service := newTestIntakeService(t, repo)

	record, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   compliance.CustomsStatusReleased,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}, testWeightRules())
	require.NoError(t, err)

	page := shared.NewPaginated([]compliance.ContainerRecord{*record}, 1, 1, 20)
	repo.On("FindAll", mock.Anything, mock.Anything).Return(page, nil)

	result, err := service.ListContainers(context.Background(), compliance.ContainerFilter{})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "CSQU3054383", result.Items[0].ContainerNumber)
}
