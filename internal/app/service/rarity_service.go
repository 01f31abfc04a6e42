package service

import (
	"strings"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

// RarityInputs are the measurable facts the score derives from.
type RarityInputs struct {
	Edition         model.EditionType
	Materials       []string
	GemstoneCount   int
	ProvenanceCount int
	ServiceCount    int
	BidCount        int
}

// ComputeRarityScore maps a piece's attributes to a 0..100 score.
// Scoring is deterministic: the same inputs always yield the same
// score, so recomputing is always safe.
func ComputeRarityScore(in RarityInputs) int {
	score := 0

	switch in.Edition {
	case model.EditionUnique:
		score += 40
	case model.EditionLimited:
		score += 25
	case model.EditionRare:
		score += 15
	case model.EditionStandard:
		score += 5
	default:
		// Unrecognized editions contribute nothing
	}

	for _, m := range in.Materials {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "gold") || strings.Contains(lower, "platinum") {
			score += 10
			break
		}
	}

	if in.GemstoneCount > 3 {
		score += 10
	}

	score += capped(in.ProvenanceCount*2, 20)
	score += capped(in.ServiceCount*2, 10)
	score += capped(in.BidCount, 10)

	if score > 100 {
		score = 100
	}
	return score
}

func capped(v, max int) int {
	if v > max {
		return max
	}
	return v
}

type RarityService interface {
	Recompute(masterpieceID uint) (int, error)
}

type rarityService struct {
	masterpieceRepo repository.MasterpieceRepository
	provenanceRepo  repository.ProvenanceRepository
	auctionRepo     repository.AuctionRepository
}

func NewRarityService(
	masterpieceRepo repository.MasterpieceRepository,
	provenanceRepo repository.ProvenanceRepository,
	auctionRepo repository.AuctionRepository,
) RarityService {
	return &rarityService{
		masterpieceRepo: masterpieceRepo,
		provenanceRepo:  provenanceRepo,
		auctionRepo:     auctionRepo,
	}
}

// Recompute refreshes and persists a piece's rarity score from its
// current attributes and history.
func (s *rarityService) Recompute(masterpieceID uint) (int, error) {
	piece, err := s.masterpieceRepo.FindByID(masterpieceID)
	if err != nil {
		return 0, ErrMasterpieceNotFound
	}

	timeline, err := s.provenanceRepo.FindTimeline(masterpieceID)
	if err != nil {
		return 0, err
	}

	serviceCount, err := s.provenanceRepo.CountServices(masterpieceID)
	if err != nil {
		return 0, err
	}

	bidCount := 0
	auctions, err := s.auctionRepo.List("", true)
	if err != nil {
		return 0, err
	}
	for _, a := range auctions {
		if a.MasterpieceID != masterpieceID {
			continue
		}
		bids, err := s.auctionRepo.FindBids(a.ID)
		if err != nil {
			return 0, err
		}
		bidCount += len(bids)
	}

	score := ComputeRarityScore(RarityInputs{
		Edition:         piece.Edition,
		Materials:       piece.Materials,
		GemstoneCount:   len(piece.Gemstones),
		ProvenanceCount: len(timeline),
		ServiceCount:    int(serviceCount),
		BidCount:        bidCount,
	})

	if score != piece.RarityScore {
		piece.RarityScore = score
		if err := s.masterpieceRepo.Update(piece); err != nil {
			return 0, err
		}
		logger.Info("Rarity score updated", map[string]interface{}{
			"masterpiece_id": masterpieceID,
			"score":          score,
		})
	}
	return score, nil
}
