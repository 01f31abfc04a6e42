package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var (
	ErrMasterpieceNotFound     = errors.New("masterpiece not found")
	ErrMasterpieceNotAvailable = errors.New("masterpiece is not available")
	ErrMasterpieceVIPOnly      = errors.New("masterpiece is reserved for vip clientele")
	ErrAlreadyOnWaitlist       = errors.New("already on the waitlist")
	ErrAlreadyReserved         = errors.New("masterpiece is already reserved")
)

const reservationWindow = 72 * time.Hour

// Valuation is the current commercial view of a piece.
type Valuation struct {
	MasterpieceID uint    `json:"masterpiece_id"`
	BasePrice     float64 `json:"base_price"`
	ServiceUplift float64 `json:"service_uplift"`
	CurrentValue  float64 `json:"current_value"`
	RarityScore   int     `json:"rarity_score"`
}

type MasterpieceService interface {
	Create(piece *model.Masterpiece) error
	Get(id uint, viewerRole model.UserRole) (*model.Masterpiece, error)
	List(filter repository.MasterpieceFilter, viewerRole model.UserRole) ([]model.Masterpiece, error)
	Update(piece *model.Masterpiece) error
	Delete(id uint) error
	GetValuation(id uint) (*Valuation, error)
	GetOwnershipHistory(id uint) ([]model.OwnershipRecord, error)
	ListOwned(ownerID uint) ([]model.Masterpiece, error)
	Assign(masterpieceID, newOwnerID uint) (*model.Masterpiece, error)

	Reserve(masterpieceID, userID uint, viewerRole model.UserRole) (*model.Reservation, error)
	JoinWaitlist(masterpieceID, userID uint, note string) (*model.WaitlistEntry, error)
	LeaveWaitlist(masterpieceID, userID uint) error
	GetWaitlist(masterpieceID uint) ([]model.WaitlistEntry, error)

	PostMoment(moment *model.AtelierMoment) error
	ListMoments(masterpieceID *uint, limit int) ([]model.AtelierMoment, error)

	AddServiceRecord(record *model.ServiceRecord) error
	GetServiceHistory(masterpieceID uint) ([]model.ServiceRecord, error)
	AddProvenanceEvent(event *model.ProvenanceEvent) error
	GetProvenance(masterpieceID uint) ([]model.ProvenanceEvent, error)
}

type masterpieceService struct {
	masterpieceRepo repository.MasterpieceRepository
	provenanceRepo  repository.ProvenanceRepository
	rarity          RarityService
	policy          *config.PolicyConfig
	hub             *websocket.Hub
}

func NewMasterpieceService(
	masterpieceRepo repository.MasterpieceRepository,
	provenanceRepo repository.ProvenanceRepository,
	rarity RarityService,
	policy *config.PolicyConfig,
	hub *websocket.Hub,
) MasterpieceService {
	return &masterpieceService{
		masterpieceRepo: masterpieceRepo,
		provenanceRepo:  provenanceRepo,
		rarity:          rarity,
		policy:          policy,
		hub:             hub,
	}
}

func (s *masterpieceService) Create(piece *model.Masterpiece) error {
	piece.Status = model.MasterpieceAvailable
	piece.RarityScore = ComputeRarityScore(RarityInputs{
		Edition:       piece.Edition,
		Materials:     piece.Materials,
		GemstoneCount: len(piece.Gemstones),
	})

	if err := s.masterpieceRepo.Create(piece); err != nil {
		return err
	}

	// Seed the provenance timeline with the creation entry
	event := &model.ProvenanceEvent{
		MasterpieceID: piece.ID,
		EventType:     "created",
		Title:         "Created at the atelier",
		OccurredAt:    time.Now(),
	}
	if err := s.provenanceRepo.CreateEvent(nil, event); err != nil {
		logger.Error("Failed to record creation provenance", err, map[string]interface{}{
			"masterpiece_id": piece.ID,
		})
	}

	if s.hub != nil && !piece.VIPOnly {
		s.hub.Broadcast(websocket.EventMasterpieceCreated, piece)
	}
	return nil
}

func (s *masterpieceService) Get(id uint, viewerRole model.UserRole) (*model.Masterpiece, error) {
	piece, err := s.masterpieceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterpieceNotFound
		}
		return nil, err
	}

	if piece.VIPOnly && !canSeeVIP(viewerRole) {
		// Private pieces look like they do not exist to outsiders
		return nil, ErrMasterpieceNotFound
	}
	return piece, nil
}

func (s *masterpieceService) List(filter repository.MasterpieceFilter, viewerRole model.UserRole) ([]model.Masterpiece, error) {
	filter.IncludeVIP = canSeeVIP(viewerRole)
	return s.masterpieceRepo.List(filter)
}

func (s *masterpieceService) Update(piece *model.Masterpiece) error {
	return s.masterpieceRepo.Update(piece)
}

func (s *masterpieceService) Delete(id uint) error {
	return s.masterpieceRepo.Delete(id)
}

// GetValuation returns the price plus the configured share of service
// costs invested since sale.
func (s *masterpieceService) GetValuation(id uint) (*Valuation, error) {
	piece, err := s.masterpieceRepo.FindByID(id)
	if err != nil {
		return nil, ErrMasterpieceNotFound
	}

	serviceCosts, err := s.provenanceRepo.SumServiceCosts(id)
	if err != nil {
		return nil, err
	}

	uplift := serviceCosts * s.policy.ServiceUpliftPct / 100
	return &Valuation{
		MasterpieceID: id,
		BasePrice:     piece.Price,
		ServiceUplift: uplift,
		CurrentValue:  piece.Price + uplift,
		RarityScore:   piece.RarityScore,
	}, nil
}

func (s *masterpieceService) GetOwnershipHistory(id uint) ([]model.OwnershipRecord, error) {
	return s.masterpieceRepo.FindOwnershipHistory(id)
}

// ListOwned is the collector's vault: every piece they hold,
// private ones included.
func (s *masterpieceService) ListOwned(ownerID uint) ([]model.Masterpiece, error) {
	return s.masterpieceRepo.List(repository.MasterpieceFilter{
		OwnerID:    &ownerID,
		IncludeVIP: true,
	})
}

// Assign hands a piece to a client directly, outside the purchase
// workflow. Used for gifts, private sales settled offline, and estate
// transfers.
func (s *masterpieceService) Assign(masterpieceID, newOwnerID uint) (*model.Masterpiece, error) {
	piece, err := s.masterpieceRepo.FindByID(masterpieceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterpieceNotFound
		}
		return nil, err
	}
	switch piece.Status {
	case model.MasterpieceAvailable, model.MasterpieceSold:
	default:
		// An active purchase, auction, or listing owns the piece's fate
		return nil, ErrMasterpieceNotAvailable
	}

	piece.Status = model.MasterpieceSold
	piece.CurrentOwnerID = &newOwnerID
	piece.ReservedByID = nil
	if err := s.masterpieceRepo.Update(piece); err != nil {
		return nil, err
	}

	record := &model.OwnershipRecord{
		MasterpieceID: masterpieceID,
		OwnerID:       newOwnerID,
		AcquiredVia:   "assignment",
		Price:         piece.Price,
		TransferredAt: time.Now(),
	}
	if err := s.masterpieceRepo.CreateOwnershipRecord(nil, record); err != nil {
		logger.Error("Failed to record assignment ownership", err, map[string]interface{}{
			"masterpiece_id": masterpieceID,
		})
	}

	event := &model.ProvenanceEvent{
		MasterpieceID: masterpieceID,
		EventType:     "assigned",
		Title:         "Assigned to a new owner",
		OccurredAt:    time.Now(),
	}
	if err := s.provenanceRepo.CreateEvent(nil, event); err != nil {
		logger.Error("Failed to record assignment provenance", err, map[string]interface{}{
			"masterpiece_id": masterpieceID,
		})
	}

	if s.hub != nil {
		s.hub.SendToUser(newOwnerID, websocket.EventPieceAssigned, map[string]interface{}{
			"masterpiece_id": masterpieceID,
			"title":          piece.Title,
		})
	}

	logger.Info("Masterpiece assigned", map[string]interface{}{
		"masterpiece_id": masterpieceID,
		"owner_id":       newOwnerID,
	})
	return piece, nil
}

func (s *masterpieceService) Reserve(masterpieceID, userID uint, viewerRole model.UserRole) (*model.Reservation, error) {
	piece, err := s.Get(masterpieceID, viewerRole)
	if err != nil {
		return nil, err
	}

	if piece.Status != model.MasterpieceAvailable {
		return nil, ErrMasterpieceNotAvailable
	}

	if _, err := s.masterpieceRepo.FindActiveReservation(masterpieceID); err == nil {
		return nil, ErrAlreadyReserved
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reservation := &model.Reservation{
		MasterpieceID: masterpieceID,
		UserID:        userID,
		Status:        model.ReservationActive,
		ExpiresAt:     time.Now().Add(reservationWindow),
	}
	if err := s.masterpieceRepo.CreateReservation(reservation); err != nil {
		return nil, err
	}

	piece.Status = model.MasterpieceReserved
	piece.ReservedByID = &userID
	if err := s.masterpieceRepo.Update(piece); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(websocket.EventMasterpieceReserved, map[string]interface{}{
			"masterpiece_id": masterpieceID,
		})
	}

	logger.Info("Masterpiece reserved", map[string]interface{}{
		"masterpiece_id": masterpieceID,
		"user_id":        userID,
		"expires_at":     reservation.ExpiresAt,
	})
	return reservation, nil
}

func (s *masterpieceService) JoinWaitlist(masterpieceID, userID uint, note string) (*model.WaitlistEntry, error) {
	if _, err := s.masterpieceRepo.FindByID(masterpieceID); err != nil {
		return nil, ErrMasterpieceNotFound
	}

	entries, err := s.masterpieceRepo.FindWaitlist(masterpieceID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return nil, ErrAlreadyOnWaitlist
		}
	}

	entry := &model.WaitlistEntry{
		MasterpieceID: masterpieceID,
		UserID:        userID,
		Note:          note,
	}
	if err := s.masterpieceRepo.CreateWaitlistEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *masterpieceService) LeaveWaitlist(masterpieceID, userID uint) error {
	return s.masterpieceRepo.DeleteWaitlistEntry(masterpieceID, userID)
}

func (s *masterpieceService) GetWaitlist(masterpieceID uint) ([]model.WaitlistEntry, error) {
	return s.masterpieceRepo.FindWaitlist(masterpieceID)
}

func (s *masterpieceService) PostMoment(moment *model.AtelierMoment) error {
	if err := s.masterpieceRepo.CreateMoment(moment); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventNewMoment, moment)
	}
	return nil
}

func (s *masterpieceService) ListMoments(masterpieceID *uint, limit int) ([]model.AtelierMoment, error) {
	return s.masterpieceRepo.ListMoments(masterpieceID, limit)
}

// AddServiceRecord documents atelier work and refreshes the rarity
// score, since service history feeds it.
func (s *masterpieceService) AddServiceRecord(record *model.ServiceRecord) error {
	if _, err := s.masterpieceRepo.FindByID(record.MasterpieceID); err != nil {
		return ErrMasterpieceNotFound
	}

	if record.PerformedAt.IsZero() {
		record.PerformedAt = time.Now()
	}
	if err := s.provenanceRepo.CreateServiceRecord(record); err != nil {
		return err
	}

	event := &model.ProvenanceEvent{
		MasterpieceID: record.MasterpieceID,
		EventType:     "serviced",
		Title:         "Serviced by the atelier",
		Description:   record.Description,
		OccurredAt:    record.PerformedAt,
	}
	if err := s.provenanceRepo.CreateEvent(nil, event); err != nil {
		logger.Error("Failed to record service provenance", err, map[string]interface{}{
			"masterpiece_id": record.MasterpieceID,
		})
	}

	if _, err := s.rarity.Recompute(record.MasterpieceID); err != nil {
		logger.Error("Failed to recompute rarity after service", err, map[string]interface{}{
			"masterpiece_id": record.MasterpieceID,
		})
	}
	return nil
}

func (s *masterpieceService) GetServiceHistory(masterpieceID uint) ([]model.ServiceRecord, error) {
	return s.provenanceRepo.FindServiceHistory(masterpieceID)
}

func (s *masterpieceService) AddProvenanceEvent(event *model.ProvenanceEvent) error {
	if _, err := s.masterpieceRepo.FindByID(event.MasterpieceID); err != nil {
		return ErrMasterpieceNotFound
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := s.provenanceRepo.CreateEvent(nil, event); err != nil {
		return err
	}

	if _, err := s.rarity.Recompute(event.MasterpieceID); err != nil {
		logger.Error("Failed to recompute rarity after provenance event", err, map[string]interface{}{
			"masterpiece_id": event.MasterpieceID,
		})
	}
	return nil
}

func (s *masterpieceService) GetProvenance(masterpieceID uint) ([]model.ProvenanceEvent, error) {
	return s.provenanceRepo.FindTimeline(masterpieceID)
}

func canSeeVIP(role model.UserRole) bool {
	return role == model.RoleVIP || role == model.RoleAdmin
}
