package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAtelier = Atelier{
	Name:     "Antonio Bellanova Atelier",
	Director: "Antonio Bellanova",
	Address:  "Aaronstrasse 8, 50676 Koeln, Deutschland",
	BankIBAN: "DE35 2022 0800 0056 5751 78",
}

func TestRenderDepositReceipt(t *testing.T) {
	r := NewHTMLRenderer()

	html, err := r.RenderDepositReceipt(testAtelier, DepositReceipt{
		Reference:      "DEP-1700000000000-AB12CD34",
		BuyerName:      "Helena Voss",
		BuyerEmail:     "helena@example.com",
		PieceTitle:     "Aurora Brooch",
		SerialNumber:   "AB-2026-001",
		TotalPrice:     120000,
		DepositAmount:  12000,
		DepositPercent: 10,
		IssuedAt:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "DEP-1700000000000-AB12CD34")
	assert.Contains(t, html, "Helena Voss")
	assert.Contains(t, html, "EUR 12000.00")
	assert.Contains(t, html, testAtelier.BankIBAN)
}

func TestRenderInvoice(t *testing.T) {
	r := NewHTMLRenderer()

	html, err := r.RenderInvoice(testAtelier, Invoice{
		Reference:       "INV-1700000000000-EF56GH78",
		DepositRef:      "DEP-1700000000000-AB12CD34",
		BuyerName:       "Helena Voss",
		BuyerEmail:      "helena@example.com",
		PieceTitle:      "Aurora Brooch",
		SerialNumber:    "AB-2026-001",
		TotalPrice:      120000,
		DepositPaid:     12000,
		RemainingAmount: 108000,
		IssuedAt:        time.Now(),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "INV-1700000000000-EF56GH78")
	assert.Contains(t, html, "EUR 108000.00")
}

func TestRenderCertificate(t *testing.T) {
	r := NewHTMLRenderer()

	html, err := r.RenderCertificate(testAtelier, Certificate{
		Number:            "CERT-2026-AB12CD34",
		VerificationToken: "A1B2C3D4E5F6A7B8",
		OwnerName:         "Helena Voss",
		PieceTitle:        "Aurora Brooch",
		SerialNumber:      "AB-2026-001",
		Materials:         []string{"platinum", "white gold"},
		Gemstones:         []string{"diamond", "sapphire"},
		Edition:           "Unique",
		RarityScore:       72,
		IssuedAt:          time.Now(),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "CERT-2026-AB12CD34")
	assert.Contains(t, html, "A1B2C3D4E5F6A7B8")
	assert.Contains(t, html, "platinum, white gold")
	assert.Contains(t, html, "72 / 100")
}

func TestRenderContract(t *testing.T) {
	r := NewHTMLRenderer()

	html, err := r.RenderContract(testAtelier, Contract{
		Reference:    "CTR-1700000000000-IJ90KL12",
		BuyerName:    "Helena Voss",
		BuyerEmail:   "helena@example.com",
		PieceTitle:   "Aurora Brooch",
		SerialNumber: "AB-2026-001",
		TotalPrice:   120000,
		Terms:        []string{"Ownership transfers on full payment.", "Resale is subject to platform approval."},
		IssuedAt:     time.Now(),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "CTR-1700000000000-IJ90KL12")
	assert.Contains(t, html, "Ownership transfers on full payment.")
}
