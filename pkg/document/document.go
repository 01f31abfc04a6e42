// Package document renders the legal and commercial documents issued
// by the platform. Documents are self-contained HTML so they can be
// stored inline, archived, or handed to a client as-is.
package document

import "time"

// Atelier identifies the issuing house on every document.
type Atelier struct {
	Name     string
	Director string
	Address  string
	BankIBAN string
}

// DepositReceipt is the payment instruction issued when a purchase
// request is approved.
type DepositReceipt struct {
	Reference      string
	BuyerName      string
	BuyerEmail     string
	PieceTitle     string
	SerialNumber   string
	TotalPrice     float64
	DepositAmount  float64
	DepositPercent float64
	IssuedAt       time.Time
}

// Invoice is the final invoice issued once production completes.
type Invoice struct {
	Reference       string
	DepositRef      string
	BuyerName       string
	BuyerEmail      string
	PieceTitle      string
	SerialNumber    string
	TotalPrice      float64
	DepositPaid     float64
	RemainingAmount float64
	IssuedAt        time.Time
}

// Certificate is the certificate of authenticity issued on completion.
type Certificate struct {
	Number            string
	VerificationToken string
	OwnerName         string
	PieceTitle        string
	SerialNumber      string
	Materials         []string
	Gemstones         []string
	Edition           string
	RarityScore       int
	IssuedAt          time.Time
}

// Contract is the sales agreement presented for signature.
type Contract struct {
	Reference    string
	BuyerName    string
	BuyerEmail   string
	PieceTitle   string
	SerialNumber string
	TotalPrice   float64
	Terms        []string
	IssuedAt     time.Time
}

// Renderer renders documents to their stored representation.
type Renderer interface {
	RenderDepositReceipt(atelier Atelier, receipt DepositReceipt) (string, error)
	RenderInvoice(atelier Atelier, invoice Invoice) (string, error)
	RenderCertificate(atelier Atelier, cert Certificate) (string, error)
	RenderContract(atelier Atelier, contract Contract) (string, error)
}
