package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type MasterpieceController struct {
	masterpieceService service.MasterpieceService
}

func NewMasterpieceController(masterpieceService service.MasterpieceService) *MasterpieceController {
	return &MasterpieceController{
		masterpieceService: masterpieceService,
	}
}

type CreateMasterpieceRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	SerialNumber string   `json:"serial_number" binding:"required"`
	Category     string   `json:"category"`
	Edition      string   `json:"edition" binding:"required"`
	Materials    []string `json:"materials"`
	Gemstones    []string `json:"gemstones"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	DepositPct   float64  `json:"deposit_pct"`
	VIPOnly      bool     `json:"vip_only"`
	ImageURL     string   `json:"image_url"`
}

type WaitlistRequest struct {
	Note string `json:"note"`
}

type AssignRequest struct {
	OwnerID uint `json:"owner_id" binding:"required"`
}

type ServiceRecordRequest struct {
	ServiceType string  `json:"service_type" binding:"required"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost" binding:"min=0"`
}

type ProvenanceEventRequest struct {
	EventType   string    `json:"event_type" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type MomentRequest struct {
	MasterpieceID *uint  `json:"masterpiece_id"`
	Title         string `json:"title" binding:"required"`
	Body          string `json:"body"`
	MediaURL      string `json:"media_url"`
}

func viewerRole(c *gin.Context) model.UserRole {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return ""
	}
	return role
}

// List returns the catalog, filtered by the caller's visibility
// GET /api/v1/masterpieces
func (ctrl *MasterpieceController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.MasterpieceFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Edition:  c.Query("edition"),
	}

	pieces, err := ctrl.masterpieceService.List(filter, viewerRole(c))
	if err != nil {
		log.Error("Failed to list masterpieces", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterpieces": pieces,
		"count":        len(pieces),
	})
}

// Get returns a single piece
// GET /api/v1/masterpieces/:id
func (ctrl *MasterpieceController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	piece, err := ctrl.masterpieceService.Get(id, viewerRole(c))
	if err != nil {
		if errors.Is(err, service.ErrMasterpieceNotFound) {
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterpiece": piece,
	})
}

// Create adds a piece to the catalog
// POST /api/v1/masterpieces (admin)
func (ctrl *MasterpieceController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateMasterpieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	piece := &model.Masterpiece{
		Title:        req.Title,
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		Category:     req.Category,
		Edition:      model.EditionType(req.Edition),
		Materials:    pq.StringArray(req.Materials),
		Gemstones:    pq.StringArray(req.Gemstones),
		Price:        req.Price,
		DepositPct:   req.DepositPct,
		VIPOnly:      req.VIPOnly,
		ImageURL:     req.ImageURL,
	}
	if err := ctrl.masterpieceService.Create(piece); err != nil {
		info := apperrors.ParseError(err, "masterpiece")
		log.Error("Failed to create masterpiece", err, map[string]interface{}{
			"serial_number": req.SerialNumber,
		})
		if info.Code == apperrors.MasterpieceSerialExists {
			apperrors.Conflict(c, info.Code, info.Message)
		} else {
			apperrors.InternalError(c, info.Message)
		}
		return
	}

	log.Info("Masterpiece created", map[string]interface{}{
		"masterpiece_id": piece.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"masterpiece": piece,
	})
}

// Update edits catalog data
// PUT /api/v1/masterpieces/:id (admin)
func (ctrl *MasterpieceController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	piece, err := ctrl.masterpieceService.Get(id, model.RoleAdmin)
	if err != nil {
		apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		return
	}

	if err := c.ShouldBindJSON(piece); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	piece.ID = id

	if err := ctrl.masterpieceService.Update(piece); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterpiece": piece,
	})
}

// Delete removes a piece from the catalog
// DELETE /api/v1/masterpieces/:id (admin)
func (ctrl *MasterpieceController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.masterpieceService.Delete(id); err != nil {
		if errors.Is(err, service.ErrMasterpieceNotFound) {
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Masterpiece removed",
	})
}

// GetValuation returns the current value of a piece
// GET /api/v1/masterpieces/:id/valuation
func (ctrl *MasterpieceController) GetValuation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	valuation, err := ctrl.masterpieceService.GetValuation(id)
	if err != nil {
		if errors.Is(err, service.ErrMasterpieceNotFound) {
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valuation": valuation,
	})
}

// GetOwnershipHistory returns the chain of owners
// GET /api/v1/masterpieces/:id/ownership
func (ctrl *MasterpieceController) GetOwnershipHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	history, err := ctrl.masterpieceService.GetOwnershipHistory(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history": history,
	})
}

// GetVault returns the pieces the caller owns
// GET /api/v1/masterpieces/vault
func (ctrl *MasterpieceController) GetVault(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	pieces, err := ctrl.masterpieceService.ListOwned(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterpieces": pieces,
		"count":        len(pieces),
	})
}

// Assign transfers a piece to a client directly
// POST /api/v1/masterpieces/:id/assign (admin)
func (ctrl *MasterpieceController) Assign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	piece, err := ctrl.masterpieceService.Assign(id, req.OwnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrMasterpieceNotAvailable):
			apperrors.Conflict(c, apperrors.MasterpieceNotAvailable, "Masterpiece has an active purchase workflow")
		default:
			log.Error("Failed to assign masterpiece", err, map[string]interface{}{
				"masterpiece_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterpiece": piece,
	})
}

// Reserve holds a piece for the caller
// POST /api/v1/masterpieces/:id/reserve
func (ctrl *MasterpieceController) Reserve(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.masterpieceService.Reserve(id, userID, viewerRole(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrMasterpieceNotAvailable):
			apperrors.Conflict(c, apperrors.MasterpieceNotAvailable, "Masterpiece is not available")
		case errors.Is(err, service.ErrAlreadyReserved):
			apperrors.Conflict(c, apperrors.MasterpieceReserved, "Masterpiece is already reserved")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"reservation": reservation,
	})
}

// JoinWaitlist adds the caller to a piece's waitlist
// POST /api/v1/masterpieces/:id/waitlist
func (ctrl *MasterpieceController) JoinWaitlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req WaitlistRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := ctrl.masterpieceService.JoinWaitlist(id, userID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrAlreadyOnWaitlist):
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "Already on the waitlist")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"entry": entry,
	})
}

// LeaveWaitlist removes the caller from a piece's waitlist
// DELETE /api/v1/masterpieces/:id/waitlist
func (ctrl *MasterpieceController) LeaveWaitlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.masterpieceService.LeaveWaitlist(id, userID); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Removed from waitlist",
	})
}

// GetWaitlist returns the ordered waitlist for a piece
// GET /api/v1/masterpieces/:id/waitlist (admin)
func (ctrl *MasterpieceController) GetWaitlist(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := ctrl.masterpieceService.GetWaitlist(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"waitlist": entries,
		"count":    len(entries),
	})
}

// PostMoment publishes an atelier moment. The piece reference is
// optional; house-wide moments carry none.
// POST /api/v1/moments (admin)
func (ctrl *MasterpieceController) PostMoment(c *gin.Context) {
	var req MomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	moment := &model.AtelierMoment{
		MasterpieceID: req.MasterpieceID,
		Title:         req.Title,
		Body:          req.Body,
		MediaURL:      req.MediaURL,
		PostedByID:    userID,
	}
	if err := ctrl.masterpieceService.PostMoment(moment); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"moment": moment,
	})
}

// ListMoments returns the atelier feed for one piece
// GET /api/v1/masterpieces/:id/moments
func (ctrl *MasterpieceController) ListMoments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	masterpieceID := &id

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	moments, err := ctrl.masterpieceService.ListMoments(masterpieceID, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"moments": moments,
	})
}

// ListFeed returns the house-wide moments feed
// GET /api/v1/moments
func (ctrl *MasterpieceController) ListFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	moments, err := ctrl.masterpieceService.ListMoments(nil, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"moments": moments,
	})
}

// AddServiceRecord documents atelier work on a piece
// POST /api/v1/masterpieces/:id/services (admin)
func (ctrl *MasterpieceController) AddServiceRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ServiceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	record := &model.ServiceRecord{
		MasterpieceID: id,
		ServiceType:   model.ServiceType(req.ServiceType),
		Description:   req.Description,
		Cost:          req.Cost,
		PerformedAt:   time.Now(),
	}
	if err := ctrl.masterpieceService.AddServiceRecord(record); err != nil {
		if errors.Is(err, service.ErrMasterpieceNotFound) {
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"service_record": record,
	})
}

// GetServiceHistory lists atelier work on a piece
// GET /api/v1/masterpieces/:id/services
func (ctrl *MasterpieceController) GetServiceHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	records, err := ctrl.masterpieceService.GetServiceHistory(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service_history": records,
	})
}

// AddProvenanceEvent appends to the provenance timeline
// POST /api/v1/masterpieces/:id/provenance (admin)
func (ctrl *MasterpieceController) AddProvenanceEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ProvenanceEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	if req.OccurredAt.IsZero() {
		req.OccurredAt = time.Now()
	}

	userID, _ := middleware.GetUserID(c)
	event := &model.ProvenanceEvent{
		MasterpieceID: id,
		EventType:     req.EventType,
		Title:         req.Title,
		Description:   req.Description,
		OccurredAt:    req.OccurredAt,
		RecordedByID:  &userID,
	}
	if err := ctrl.masterpieceService.AddProvenanceEvent(event); err != nil {
		if errors.Is(err, service.ErrMasterpieceNotFound) {
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"event": event,
	})
}

// GetProvenance returns the provenance timeline
// GET /api/v1/masterpieces/:id/provenance
func (ctrl *MasterpieceController) GetProvenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	timeline, err := ctrl.masterpieceService.GetProvenance(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provenance": timeline,
	})
}

// parseID reads a uint path parameter, responding with a validation
// error when it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(parsed), true
}
