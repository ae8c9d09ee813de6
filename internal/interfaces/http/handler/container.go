package handler

import (
	"time"

	complianceapp "github.com/drayage/backend/internal/application/compliance"
	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ContainerHandler handles container intake and compliance API endpoints
type ContainerHandler struct {
	BaseHandler
	intakeService *complianceapp.IntakeService
}

// NewContainerHandler creates a new ContainerHandler
func NewContainerHandler(intakeService *complianceapp.IntakeService) *ContainerHandler {
	return &ContainerHandler{
		intakeService: intakeService,
	}
}

// RegisterRoutes registers container routes on the given group
func (h *ContainerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	containers := rg.Group("/compliance/containers")
	{
		containers.POST("", h.Intake)
		containers.GET("", h.List)
		containers.GET("/stats/summary", h.GetStatusSummary)
		containers.GET("/number/:number", h.GetByNumber)
		containers.GET("/:id", h.GetByID)
		containers.PUT("/:id/customs-status", h.UpdateCustomsStatus)
		containers.PUT("/:id/last-free-day", h.SetLastFreeDay)
	}
}

// IntakeContainerRequest represents a container arriving for intake
type IntakeContainerRequest struct {
	ContainerNumber string     `json:"container_number" binding:"required"`
	Size            string     `json:"size" binding:"required"`
	Type            string     `json:"type" binding:"required"`
	CustomsStatus   string     `json:"customs_status" binding:"required"`
	Terminal        string     `json:"terminal"`
	TerminalLat     *float64   `json:"terminal_lat"`
	TerminalLon     *float64   `json:"terminal_lon"`
	GrossWeightLbs  float64    `json:"gross_weight_lbs" binding:"gte=0"`
	IsHazmat        bool       `json:"is_hazmat"`
	HazmatClass     string     `json:"hazmat_class"`
	UNNumber        string     `json:"un_number"`
	IsReefer        bool       `json:"is_reefer"`
	ReeferSetpointC *float64   `json:"reefer_setpoint_c"`
	VesselETA       *time.Time `json:"vessel_eta"`
	LastFreeDay     *time.Time `json:"last_free_day"`
}

// UpdateCustomsStatusRequest represents a customs status change
type UpdateCustomsStatusRequest struct {
	CustomsStatus string `json:"customs_status" binding:"required"`
}

// SetLastFreeDayRequest represents a last free day update. A null value
// clears the last free day.
type SetLastFreeDayRequest struct {
	LastFreeDay *time.Time `json:"last_free_day"`
}

// ListContainersRequest represents container list query parameters
type ListContainersRequest struct {
	dto.ListRequest
	CustomsStatus string `form:"customs_status"`
	Size          string `form:"size"`
	Type          string `form:"type"`
	Terminal      string `form:"terminal"`
	Compliant     *bool  `form:"compliant"`
}

// Intake validates and registers an arriving container
func (h *ContainerHandler) Intake(c *gin.Context) {
	var req IntakeContainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq := complianceapp.IntakeContainerRequest{
		ContainerNumber: req.ContainerNumber,
		Size:            req.Size,
		Type:            req.Type,
		CustomsStatus:   req.CustomsStatus,
		Terminal:        req.Terminal,
		TerminalLat:     req.TerminalLat,
		TerminalLon:     req.TerminalLon,
		GrossWeightLbs:  toDecimal(req.GrossWeightLbs),
		IsHazmat:        req.IsHazmat,
		HazmatClass:     req.HazmatClass,
		UNNumber:        req.UNNumber,
		IsReefer:        req.IsReefer,
		VesselETA:       req.VesselETA,
		LastFreeDay:     req.LastFreeDay,
	}
	if req.ReeferSetpointC != nil {
		appReq.ReeferSetpointC = toDecimalPtr(*req.ReeferSetpointC)
	}

	record, err := h.intakeService.IntakeContainer(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, record)
}

// GetByID retrieves a container record by its ID
func (h *ContainerHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid container record ID format")
		return
	}

	record, err := h.intakeService.GetContainer(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// GetByNumber retrieves a container record by its ISO 6346 identifier
func (h *ContainerHandler) GetByNumber(c *gin.Context) {
	record, err := h.intakeService.GetContainerByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// List lists container records with filtering and pagination
func (h *ContainerHandler) List(c *gin.Context) {
	var req ListContainersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := compliance.ContainerFilter{Filter: req.ToFilter()}

	if req.CustomsStatus != "" {
		status := compliance.CustomsStatus(req.CustomsStatus)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid customs status")
			return
		}
		filter.CustomsStatus = &status
	}
	if req.Size != "" {
		size := valueobject.ContainerSize(req.Size)
		if !size.IsValid() {
			h.BadRequest(c, "Invalid container size")
			return
		}
		filter.Size = &size
	}
	if req.Type != "" {
		containerType := valueobject.ContainerType(req.Type)
		if !containerType.IsValid() {
			h.BadRequest(c, "Invalid container type")
			return
		}
		filter.Type = &containerType
	}
	if req.Terminal != "" {
		filter.Terminal = &req.Terminal
	}
	filter.Compliant = req.Compliant

	var err error
	if filter.LFDBefore, err = parseTimeQuery(c, "lfd_before"); err != nil {
		h.BadRequest(c, "lfd_before must be RFC 3339")
		return
	}

	page, err := h.intakeService.ListContainers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetStatusSummary reports container counts by customs status
func (h *ContainerHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.intakeService.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// UpdateCustomsStatus records a customs status change for a container
func (h *ContainerHandler) UpdateCustomsStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid container record ID format")
		return
	}

	var req UpdateCustomsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	record, err := h.intakeService.UpdateCustomsStatus(c.Request.Context(), id, req.CustomsStatus)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// SetLastFreeDay updates a container's last free day
func (h *ContainerHandler) SetLastFreeDay(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid container record ID format")
		return
	}

	var req SetLastFreeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	record, err := h.intakeService.SetLastFreeDay(c.Request.Context(), id, req.LastFreeDay)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}
