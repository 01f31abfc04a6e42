package minting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedMinter(t *testing.T) {
	m := NewSimulatedMinter(0)

	req := MintRequest{
		CertificateNumber: "CERT-2026-AB12CD34",
		SerialNumber:      "AB-2026-001",
		OwnerID:           7,
	}

	result, err := m.Mint(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.TokenID, 16)
	assert.True(t, len(result.TransactionHash) == 66)
	assert.Equal(t, simulatedContract, result.ContractAddress)
	assert.False(t, result.MintedAt.IsZero())

	// Same request mints the same token identity
	again, err := m.Mint(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, result.TokenID, again.TokenID)
	assert.Equal(t, result.TransactionHash, again.TransactionHash)
}

func TestSimulatedMinter_ContextCancelled(t *testing.T) {
	m := NewSimulatedMinter(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Mint(ctx, MintRequest{CertificateNumber: "CERT-2026-X"})
	assert.ErrorIs(t, err, context.Canceled)
}
