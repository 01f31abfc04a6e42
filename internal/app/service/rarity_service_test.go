package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

func TestComputeRarityScore(t *testing.T) {
	tests := []struct {
		name     string
		inputs   RarityInputs
		expected int
	}{
		{
			name:     "standard edition baseline",
			inputs:   RarityInputs{Edition: model.EditionStandard},
			expected: 5,
		},
		{
			name:     "unrecognized edition earns nothing",
			inputs:   RarityInputs{Edition: "open"},
			expected: 0,
		},
		{
			name: "unique platinum piece",
			inputs: RarityInputs{
				Edition:   model.EditionUnique,
				Materials: []string{"platinum"},
			},
			expected: 50,
		},
		{
			name: "precious metal counted once",
			inputs: RarityInputs{
				Edition:   model.EditionLimited,
				Materials: []string{"yellow gold", "white gold", "platinum"},
			},
			expected: 35,
		},
		{
			name: "gemstone bonus needs more than three stones",
			inputs: RarityInputs{
				Edition:       model.EditionRare,
				GemstoneCount: 3,
			},
			expected: 15,
		},
		{
			name: "provenance capped at twenty",
			inputs: RarityInputs{
				Edition:         model.EditionStandard,
				ProvenanceCount: 50,
			},
			expected: 25,
		},
		{
			name: "everything maxed caps at one hundred",
			inputs: RarityInputs{
				Edition:         model.EditionUnique,
				Materials:       []string{"platinum"},
				GemstoneCount:   10,
				ProvenanceCount: 20,
				ServiceCount:    10,
				BidCount:        50,
			},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeRarityScore(tt.inputs))
		})
	}
}

func TestRarityService_Recompute(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	auctionRepo := repository.NewAuctionRepository(testDB)
	svc := NewRarityService(masterpieceRepo, provenanceRepo, auctionRepo)

	piece := &model.Masterpiece{
		Title:        "Recomputed Piece",
		SerialNumber: "AB-2026-070",
		Price:        30000,
		Edition:      model.EditionUnique,
		Materials:    pq.StringArray{"platinum"},
		Status:       model.MasterpieceAvailable,
	}
	require.NoError(t, testDB.Create(piece).Error)

	score, err := svc.Recompute(piece.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, score)

	// History raises the score: each provenance event is worth two points.
	for i := 0; i < 3; i++ {
		event := &model.ProvenanceEvent{
			MasterpieceID: piece.ID,
			EventType:     "exhibited",
			Title:         "Winter salon",
			Description:   "Shown at the winter salon",
			OccurredAt:    time.Now(),
		}
		require.NoError(t, testDB.Create(event).Error)
	}

	score, err = svc.Recompute(piece.ID)
	require.NoError(t, err)
	assert.Equal(t, 56, score)

	var stored model.Masterpiece
	require.NoError(t, testDB.First(&stored, piece.ID).Error)
	assert.Equal(t, 56, stored.RarityScore)
}

func TestRarityService_Recompute_UnknownPiece(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewRarityService(
		repository.NewMasterpieceRepository(testDB),
		repository.NewProvenanceRepository(testDB),
		repository.NewAuctionRepository(testDB),
	)

	_, err = svc.Recompute(9999)
	assert.ErrorIs(t, err, ErrMasterpieceNotFound)
}
