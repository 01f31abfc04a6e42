// Package minting issues digital ownership tokens for certified
// masterpieces. The production chain integration lives behind the
// Minter interface; the simulated implementation derives deterministic
// token data from the certificate so results are stable across runs.
package minting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// MintRequest describes the certificate a token is minted for.
type MintRequest struct {
	CertificateNumber string
	SerialNumber      string
	OwnerID           uint
}

// MintResult is the on-chain identity of a minted token.
type MintResult struct {
	TokenID         string
	TransactionHash string
	ContractAddress string
	MintedAt        time.Time
}

// Minter mints ownership tokens.
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (*MintResult, error)
}

const simulatedContract = "0xBE11A404A000000000000000000000000000AB01"

// SimulatedMinter fakes the minting round trip with a configurable
// delay so callers exercise their async handling.
type SimulatedMinter struct {
	Delay time.Duration
}

func NewSimulatedMinter(delay time.Duration) *SimulatedMinter {
	return &SimulatedMinter{Delay: delay}
}

func (m *SimulatedMinter) Mint(ctx context.Context, req MintRequest) (*MintResult, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", req.CertificateNumber, req.SerialNumber, req.OwnerID)))
	digest := hex.EncodeToString(sum[:])

	return &MintResult{
		TokenID:         digest[:16],
		TransactionHash: "0x" + digest,
		ContractAddress: simulatedContract,
		MintedAt:        time.Now(),
	}, nil
}
