package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/docref"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/document"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var (
	ErrResaleNotFound       = errors.New("resale listing not found")
	ErrResaleNotSeller      = errors.New("only the current owner may list a piece for resale")
	ErrResaleAlreadyListed  = errors.New("an open resale listing already exists for this piece")
	ErrResaleNotApproved    = errors.New("listing has not been approved")
	ErrResaleClosed         = errors.New("listing is closed")
	ErrResaleNoBuyer        = errors.New("no buyer offer has been accepted")
	ErrResaleSelfPurchase   = errors.New("you cannot buy your own listing")
	ErrResaleNotParticipant = errors.New("only negotiation participants may read this thread")
)

type ResaleService interface {
	Request(masterpieceID, sellerID uint, askingPrice float64) (*model.ResaleListing, error)
	Review(listingID, adminID uint, approve bool, note string) (*model.ResaleListing, error)
	Withdraw(listingID, sellerID uint) (*model.ResaleListing, error)
	Get(listingID uint) (*model.ResaleListing, error)
	List(status string) ([]model.ResaleListing, error)
	ListBySeller(sellerID uint) ([]model.ResaleListing, error)
	SendMessage(listingID, senderID uint, body string, offer *float64) (*model.NegotiationMessage, error)
	GetMessages(listingID, viewerID uint, isAdmin bool) ([]model.NegotiationMessage, error)
	AcceptOffer(listingID, sellerID, buyerID uint, agreedPrice float64) (*model.ResaleListing, error)
	Complete(listingID, adminID uint) (*model.ResaleListing, error)
}

type resaleService struct {
	db              *gorm.DB
	resaleRepo      repository.ResaleRepository
	masterpieceRepo repository.MasterpieceRepository
	escrowRepo      repository.EscrowRepository
	certificateRepo repository.CertificateRepository
	fractionalRepo  repository.FractionalRepository
	provenanceRepo  repository.ProvenanceRepository
	userRepo        repository.UserRepository
	notifications   NotificationService
	refs            docref.Generator
	renderer        document.Renderer
	hub             *websocket.Hub
	cfg             *config.Config
}

func NewResaleService(
	db *gorm.DB,
	resaleRepo repository.ResaleRepository,
	masterpieceRepo repository.MasterpieceRepository,
	escrowRepo repository.EscrowRepository,
	certificateRepo repository.CertificateRepository,
	fractionalRepo repository.FractionalRepository,
	provenanceRepo repository.ProvenanceRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	refs docref.Generator,
	renderer document.Renderer,
	hub *websocket.Hub,
	cfg *config.Config,
) ResaleService {
	return &resaleService{
		db:              db,
		resaleRepo:      resaleRepo,
		masterpieceRepo: masterpieceRepo,
		escrowRepo:      escrowRepo,
		certificateRepo: certificateRepo,
		fractionalRepo:  fractionalRepo,
		provenanceRepo:  provenanceRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		refs:            refs,
		renderer:        renderer,
		hub:             hub,
		cfg:             cfg,
	}
}

// Request opens a listing for staff review and parks the piece so it
// cannot be assigned or auctioned meanwhile. The platform fee in force
// today is captured on the listing, so later policy changes do not
// reprice existing listings.
func (s *resaleService) Request(masterpieceID, sellerID uint, askingPrice float64) (*model.ResaleListing, error) {
	piece, err := s.masterpieceRepo.FindByID(masterpieceID)
	if err != nil {
		return nil, ErrMasterpieceNotFound
	}
	if piece.CurrentOwnerID == nil || *piece.CurrentOwnerID != sellerID {
		return nil, ErrResaleNotSeller
	}
	if askingPrice <= 0 {
		return nil, fmt.Errorf("asking price must be positive")
	}
	if piece.Status != model.MasterpieceSold {
		return nil, ErrMasterpieceNotAvailable
	}

	if _, err := s.resaleRepo.FindActiveByMasterpiece(masterpieceID); err == nil {
		return nil, ErrResaleAlreadyListed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	listing := &model.ResaleListing{
		MasterpieceID:  masterpieceID,
		SellerID:       sellerID,
		AskingPrice:    askingPrice,
		PlatformFeePct: s.cfg.Policy.ResalePlatformFeePct,
		Status:         model.ResaleRequested,
	}
	if err := s.resaleRepo.Create(listing); err != nil {
		return nil, err
	}

	piece.Status = model.MasterpieceResalePending
	if err := s.masterpieceRepo.Update(piece); err != nil {
		return nil, err
	}

	logger.Info("Resale listing requested", map[string]interface{}{
		"listing_id":     listing.ID,
		"masterpiece_id": masterpieceID,
		"seller_id":      sellerID,
	})
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventResaleRequested, listing)
	}
	return listing, nil
}

// Review approves or declines a listing. Approval puts the piece on
// the private market; a decline hands it back to the owner's vault.
func (s *resaleService) Review(listingID, adminID uint, approve bool, note string) (*model.ResaleListing, error) {
	listing, err := s.resaleRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResaleNotFound
		}
		return nil, err
	}
	if listing.Status != model.ResaleRequested {
		return nil, ErrResaleClosed
	}

	pieceStatus := model.MasterpieceListedPrivate
	if approve {
		listing.Status = model.ResaleApproved
	} else {
		listing.Status = model.ResaleRejected
		pieceStatus = model.MasterpieceSold
	}
	listing.ReviewedByID = &adminID
	listing.ReviewNote = note
	if err := s.resaleRepo.Update(listing); err != nil {
		return nil, err
	}

	if piece, err := s.masterpieceRepo.FindByID(listing.MasterpieceID); err == nil {
		piece.Status = pieceStatus
		if err := s.masterpieceRepo.Update(piece); err != nil {
			return nil, err
		}
	}

	verdict := "approved"
	if !approve {
		verdict = "declined"
	}
	s.notifications.Notify(listing.SellerID, model.NotifyResaleReviewed,
		fmt.Sprintf("Resale listing %s", verdict),
		fmt.Sprintf("Your resale listing has been %s.", verdict),
		fmt.Sprintf("/resales/%d", listing.ID))
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventResaleReviewed, listing)
	}
	return listing, nil
}

func (s *resaleService) Withdraw(listingID, sellerID uint) (*model.ResaleListing, error) {
	listing, err := s.resaleRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResaleNotFound
		}
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, ErrResaleNotSeller
	}
	switch listing.Status {
	case model.ResaleRequested, model.ResaleApproved:
	default:
		return nil, ErrResaleClosed
	}

	listing.Status = model.ResaleWithdrawn
	if err := s.resaleRepo.Update(listing); err != nil {
		return nil, err
	}

	if piece, err := s.masterpieceRepo.FindByID(listing.MasterpieceID); err == nil {
		piece.Status = model.MasterpieceSold
		if err := s.masterpieceRepo.Update(piece); err != nil {
			return nil, err
		}
	}
	return listing, nil
}

func (s *resaleService) Get(listingID uint) (*model.ResaleListing, error) {
	listing, err := s.resaleRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResaleNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *resaleService) List(status string) ([]model.ResaleListing, error) {
	return s.resaleRepo.List(status)
}

func (s *resaleService) ListBySeller(sellerID uint) ([]model.ResaleListing, error) {
	return s.resaleRepo.FindBySeller(sellerID)
}

// SendMessage posts into the negotiation thread. Offers are just
// messages carrying a price; nothing binds until the seller accepts.
func (s *resaleService) SendMessage(listingID, senderID uint, body string, offer *float64) (*model.NegotiationMessage, error) {
	listing, err := s.resaleRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResaleNotFound
		}
		return nil, err
	}
	if listing.Status != model.ResaleApproved {
		return nil, ErrResaleNotApproved
	}
	if offer != nil && listing.SellerID == senderID {
		return nil, fmt.Errorf("the seller cannot make an offer on their own listing")
	}

	message := &model.NegotiationMessage{
		ListingID: listingID,
		SenderID:  senderID,
		Body:      body,
		Offer:     offer,
	}
	if err := s.resaleRepo.CreateMessage(message); err != nil {
		return nil, err
	}

	if offer != nil && senderID != listing.SellerID {
		s.notifications.Notify(listing.SellerID, model.NotifyResaleOffer,
			"New offer on your listing",
			fmt.Sprintf("An offer of %.2f EUR has been made on your listing.", *offer),
			fmt.Sprintf("/resales/%d", listing.ID))
	}
	return message, nil
}

// GetMessages returns the negotiation thread to its participants. The
// seller, the accepted buyer, anyone who has posted into the thread,
// and staff qualify; everyone else is turned away.
func (s *resaleService) GetMessages(listingID, viewerID uint, isAdmin bool) ([]model.NegotiationMessage, error) {
	listing, err := s.resaleRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResaleNotFound
		}
		return nil, err
	}

	messages, err := s.resaleRepo.FindMessages(listingID)
	if err != nil {
		return nil, err
	}
	if isAdmin || listing.SellerID == viewerID {
		return messages, nil
	}
	if listing.BuyerID != nil && *listing.BuyerID == viewerID {
		return messages, nil
	}
	for _, m := range messages {
		if m.SenderID == viewerID {
			return messages, nil
		}
	}
	return nil, ErrResaleNotParticipant
}

// AcceptOffer binds the seller to a buyer at an agreed price. The
// buyer's funds go into escrow and the piece enters settlement.
func (s *resaleService) AcceptOffer(listingID, sellerID, buyerID uint, agreedPrice float64) (*model.ResaleListing, error) {
	var listing *model.ResaleListing

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	listing, err := s.resaleRepo.FindByIDForUpdate(tx, listingID)
	if err != nil {
		tx.Rollback()
		return nil, ErrResaleNotFound
	}
	if listing.SellerID != sellerID {
		tx.Rollback()
		return nil, ErrResaleNotSeller
	}
	if listing.Status != model.ResaleApproved {
		tx.Rollback()
		return nil, ErrResaleNotApproved
	}
	if buyerID == sellerID {
		tx.Rollback()
		return nil, ErrResaleSelfPurchase
	}

	now := time.Now()
	listing.Status = model.ResaleAccepted
	listing.BuyerID = &buyerID
	listing.AgreedPrice = &agreedPrice

	// The buyer's payment goes straight into escrow
	escrow := &model.EscrowTransaction{
		ResaleID:     &listing.ID,
		BuyerID:      buyerID,
		Amount:       agreedPrice,
		Status:       model.EscrowHeld,
		Source:       model.EscrowFromResale,
		HeldAt:       now,
		WindowEndsAt: now.Add(s.cfg.Escrow.DisputeWindow),
	}
	if err := s.escrowRepo.Create(tx, escrow); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.resaleRepo.UpdateWithTx(tx, listing); err != nil {
		tx.Rollback()
		return nil, err
	}

	piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, listing.MasterpieceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	piece.Status = model.MasterpieceEscrowPending
	if err := s.masterpieceRepo.UpdateWithTx(tx, piece); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.notifications.Notify(buyerID, model.NotifyResaleOffer,
		"Offer accepted",
		fmt.Sprintf("Your offer of %.2f EUR has been accepted. Payment instructions will follow.", agreedPrice),
		fmt.Sprintf("/resales/%d", listing.ID))
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventResaleAccepted, listing)
	}
	return listing, nil
}

// Complete settles the sale. The held escrow is released, ownership
// and the piece's valuation move to the agreed price, the platform fee
// is booked, and a fresh certificate of authenticity is issued to the
// new owner.
func (s *resaleService) Complete(listingID, adminID uint) (*model.ResaleListing, error) {
	var (
		listing     *model.ResaleListing
		certificate *model.Certificate
		fee         float64
	)

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	listing, err := s.resaleRepo.FindByIDForUpdate(tx, listingID)
	if err != nil {
		tx.Rollback()
		return nil, ErrResaleNotFound
	}
	if listing.Status != model.ResaleAccepted {
		tx.Rollback()
		return nil, ErrResaleNotApproved
	}
	if listing.BuyerID == nil || listing.AgreedPrice == nil {
		tx.Rollback()
		return nil, ErrResaleNoBuyer
	}

	piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, listing.MasterpieceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	buyerID := *listing.BuyerID
	price := *listing.AgreedPrice
	fee = price * listing.PlatformFeePct / 100

	escrow, err := s.escrowRepo.FindByResale(listing.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	escrow, err = s.escrowRepo.FindByIDForUpdate(tx, escrow.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	switch escrow.Status {
	case model.EscrowHeld:
		escrow.Status = model.EscrowReleased
		escrow.ReleasedAt = &now
		if err := s.escrowRepo.Update(tx, escrow); err != nil {
			tx.Rollback()
			return nil, err
		}
	case model.EscrowReleased:
	default:
		tx.Rollback()
		return nil, ErrEscrowUnderDispute
	}

	// The agreed price becomes the piece's valuation of record
	piece.CurrentOwnerID = &buyerID
	piece.Status = model.MasterpieceSold
	piece.Price = price
	if err := s.masterpieceRepo.UpdateWithTx(tx, piece); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.masterpieceRepo.CreateOwnershipRecord(tx, &model.OwnershipRecord{
		MasterpieceID: piece.ID,
		OwnerID:       buyerID,
		AcquiredVia:   "resale",
		Price:         price,
		TransferredAt: now,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.fractionalRepo.CreateRevenueEntry(tx, &model.RevenueEntry{
		MasterpieceID: &piece.ID,
		Source:        model.RevenueResaleFee,
		Amount:        fee,
		Reference:     fmt.Sprintf("resale-%d", listing.ID),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.provenanceRepo.CreateEvent(tx, &model.ProvenanceEvent{
		MasterpieceID: piece.ID,
		EventType:     "resold",
		Title:         "Changed hands on the secondary market",
		OccurredAt:    now,
		RecordedByID:  &adminID,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	certificate, err = s.issueCertificate(tx, piece, buyerID, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	listing.Status = model.ResaleCompleted
	listing.CompletedAt = &now
	if err := s.resaleRepo.UpdateWithTx(tx, listing); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Resale completed", map[string]interface{}{
		"listing_id": listing.ID,
		"fee":        fee,
	})
	s.notifications.Notify(listing.SellerID, model.NotifyResaleReviewed,
		"Resale completed",
		fmt.Sprintf("Your piece has been sold for %.2f EUR. A platform fee of %.2f EUR was deducted.", price, fee),
		fmt.Sprintf("/resales/%d", listing.ID))
	s.notifications.Notify(buyerID, model.NotifyCertificateIssued,
		"Purchase completed",
		fmt.Sprintf("Ownership has been transferred to you. Certificate %s has been issued.", certificate.Number),
		fmt.Sprintf("/certificates/%d", certificate.ID))
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventResaleCompleted, listing)
	}
	return listing, nil
}

// issueCertificate writes the new owner's certificate of authenticity
// inside the settlement transaction.
func (s *resaleService) issueCertificate(tx *gorm.DB, piece *model.Masterpiece, ownerID uint, now time.Time) (*model.Certificate, error) {
	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		return nil, err
	}

	certNumber := s.refs.CertificateNumber(now.Year())
	token := s.refs.VerificationToken()
	content, err := s.renderer.RenderCertificate(document.Atelier{
		Name:     s.cfg.Atelier.Name,
		Director: s.cfg.Atelier.Director,
		Address:  s.cfg.Atelier.Address,
		BankIBAN: s.cfg.Atelier.BankIBAN,
	}, document.Certificate{
		Number:            certNumber,
		VerificationToken: token,
		OwnerName:         owner.Name,
		PieceTitle:        piece.Title,
		SerialNumber:      piece.SerialNumber,
		Materials:         []string(piece.Materials),
		Gemstones:         []string(piece.Gemstones),
		Edition:           string(piece.Edition),
		RarityScore:       piece.RarityScore,
		IssuedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	certificate := &model.Certificate{
		MasterpieceID:     piece.ID,
		OwnerID:           ownerID,
		Number:            certNumber,
		VerificationToken: token,
		Content:           content,
		RarityScore:       piece.RarityScore,
		IssuedAt:          now,
	}
	if err := s.certificateRepo.Create(tx, certificate); err != nil {
		return nil, err
	}
	return certificate, nil
}
