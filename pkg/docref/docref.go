// Package docref generates the reference numbers printed on platform
// documents. References must be unique and human quotable, so they
// combine a millisecond timestamp with a short random suffix.
package docref

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces document references and verification tokens.
type Generator interface {
	DepositReference() string
	InvoiceReference() string
	CertificateNumber(year int) string
	ContractReference() string
	VerificationToken() string
}

// UUIDGenerator is the default Generator backed by random UUIDs.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) DepositReference() string {
	return fmt.Sprintf("DEP-%d-%s", time.Now().UnixMilli(), shortID())
}

func (g *UUIDGenerator) InvoiceReference() string {
	return fmt.Sprintf("INV-%d-%s", time.Now().UnixMilli(), shortID())
}

func (g *UUIDGenerator) CertificateNumber(year int) string {
	return fmt.Sprintf("CERT-%d-%s", year, shortID())
}

func (g *UUIDGenerator) ContractReference() string {
	return fmt.Sprintf("CTR-%d-%s", time.Now().UnixMilli(), shortID())
}

// VerificationToken returns an uppercase token suitable for public
// certificate verification lookups.
func (g *UUIDGenerator) VerificationToken() string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(u[:16])
}

func shortID() string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(u[:8])
}
