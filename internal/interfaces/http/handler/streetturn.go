package handler

import (
	"time"

	streetturnapp "github.com/drayage/backend/internal/application/streetturn"
	"github.com/gin-gonic/gin"
)

// StreetTurnHandler handles street-turn matching API endpoints
type StreetTurnHandler struct {
	BaseHandler
	matchService *streetturnapp.MatchService
}

// NewStreetTurnHandler creates a new StreetTurnHandler
func NewStreetTurnHandler(matchService *streetturnapp.MatchService) *StreetTurnHandler {
	return &StreetTurnHandler{
		matchService: matchService,
	}
}

// RegisterRoutes registers street-turn routes on the given group
func (h *StreetTurnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	streetTurns := rg.Group("/street-turns")
	{
		streetTurns.GET("/candidates", h.FindCandidates)
		streetTurns.POST("/bookings", h.RegisterBooking)
	}
}

// RegisterBookingRequest represents an export booking registration
type RegisterBookingRequest struct {
	BookingNumber string     `json:"booking_number" binding:"required,min=1,max=50"`
	Size          string     `json:"size" binding:"required"`
	Type          string     `json:"type" binding:"required"`
	Terminal      string     `json:"terminal"`
	DocCutoff     *time.Time `json:"doc_cutoff"`
	PortCutoff    *time.Time `json:"port_cutoff"`
}

// FindCandidates runs the matcher and returns proposed street-turn
// pairings. Terminals may be repeated to scope the import pool; as_of
// excludes export bookings already past their cutoff.
func (h *StreetTurnHandler) FindCandidates(c *gin.Context) {
	req := streetturnapp.MatchRequest{
		Terminals: c.QueryArray("terminal"),
	}

	asOf, err := parseTimeQuery(c, "as_of")
	if err != nil {
		h.BadRequest(c, "as_of must be RFC 3339")
		return
	}
	if asOf != nil {
		req.AsOf = *asOf
	}

	result, err := h.matchService.FindCandidates(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterBooking records an export booking needing an empty container
func (h *StreetTurnHandler) RegisterBooking(c *gin.Context) {
	var req RegisterBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	booking, err := h.matchService.RegisterBooking(c.Request.Context(), streetturnapp.RegisterBookingRequest{
		BookingNumber: req.BookingNumber,
		Size:          req.Size,
		Type:          req.Type,
		Terminal:      req.Terminal,
		DocCutoff:     req.DocCutoff,
		PortCutoff:    req.PortCutoff,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, booking)
}
