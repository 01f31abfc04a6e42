package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
)

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrInvalidVerification = errors.New("verification token is not valid")
)

// VerificationResult is the public view returned for a token lookup.
// It deliberately omits the owner's identity.
type VerificationResult struct {
	Number       string `json:"number"`
	PieceTitle   string `json:"piece_title"`
	SerialNumber string `json:"serial_number"`
	RarityScore  int    `json:"rarity_score"`
	IssuedAt     string `json:"issued_at"`
	TokenID      string `json:"token_id,omitempty"`
	TokenTxHash  string `json:"token_tx_hash,omitempty"`
	Authentic    bool   `json:"authentic"`
}

type CertificateService interface {
	Get(certificateID, ownerID uint, isAdmin bool) (*model.Certificate, error)
	ListByOwner(ownerID uint) ([]model.Certificate, error)
	Verify(token string) (*VerificationResult, error)
}

type certificateService struct {
	certificateRepo repository.CertificateRepository
	masterpieceRepo repository.MasterpieceRepository
}

func NewCertificateService(certificateRepo repository.CertificateRepository, masterpieceRepo repository.MasterpieceRepository) CertificateService {
	return &certificateService{certificateRepo: certificateRepo, masterpieceRepo: masterpieceRepo}
}

func (s *certificateService) Get(certificateID, ownerID uint, isAdmin bool) (*model.Certificate, error) {
	cert, err := s.certificateRepo.FindByID(certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	if !isAdmin && cert.OwnerID != ownerID {
		return nil, ErrCertificateNotFound
	}
	return cert, nil
}

func (s *certificateService) ListByOwner(ownerID uint) ([]model.Certificate, error) {
	return s.certificateRepo.FindByOwner(ownerID)
}

// Verify is the public authenticity check. An unknown token returns
// ErrInvalidVerification rather than a not-found, so callers cannot
// tell a bad token from a missing certificate.
func (s *certificateService) Verify(token string) (*VerificationResult, error) {
	if token == "" {
		return nil, ErrInvalidVerification
	}
	cert, err := s.certificateRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, err
	}

	piece, err := s.masterpieceRepo.FindByID(cert.MasterpieceID)
	if err != nil {
		return nil, err
	}

	return &VerificationResult{
		Number:       cert.Number,
		PieceTitle:   piece.Title,
		SerialNumber: piece.SerialNumber,
		RarityScore:  cert.RarityScore,
		IssuedAt:     cert.IssuedAt.Format("2006-01-02"),
		TokenID:      cert.TokenID,
		TokenTxHash:  cert.TokenTxHash,
		Authentic:    true,
	}, nil
}
