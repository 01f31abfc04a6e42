package docref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceFormats(t *testing.T) {
	g := NewUUIDGenerator()

	assert.True(t, strings.HasPrefix(g.DepositReference(), "DEP-"))
	assert.True(t, strings.HasPrefix(g.InvoiceReference(), "INV-"))
	assert.True(t, strings.HasPrefix(g.ContractReference(), "CTR-"))
	assert.True(t, strings.HasPrefix(g.CertificateNumber(2026), "CERT-2026-"))
}

func TestVerificationToken(t *testing.T) {
	g := NewUUIDGenerator()

	token := g.VerificationToken()
	assert.Len(t, token, 16)
	assert.Equal(t, strings.ToUpper(token), token)

	// Tokens must not repeat
	assert.NotEqual(t, token, g.VerificationToken())
}

func TestReferencesAreUnique(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := g.InvoiceReference()
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
