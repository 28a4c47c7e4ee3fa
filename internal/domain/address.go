package domain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Address length bounds for base58-encoded Solana public keys.
const (
	MinAddressLen = 32
	MaxAddressLen = 44
)

// ErrInvalidAddress is returned when a token address fails format validation.
var ErrInvalidAddress = errors.New("invalid token address")

// ValidateAddress checks that addr is a plausible token mint address:
// 32-44 characters over the base58 alphabet (no 0, O, I, l).
// It must be called before any provider fetch is issued.
func ValidateAddress(addr string) error {
	if len(addr) < MinAddressLen || len(addr) > MaxAddressLen {
		return fmt.Errorf("%w: length %d outside [%d, %d]", ErrInvalidAddress, len(addr), MinAddressLen, MaxAddressLen)
	}
	if _, err := base58.Decode(addr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return nil
}

// ValidateAddressStrict additionally requires the decoded key to be a valid
// ed25519 curve point. Token mints created via PDAs are off-curve, so this is
// only appropriate for wallet owner addresses.
func ValidateAddressStrict(addr string) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: decoded to %d bytes, want 32", ErrInvalidAddress, len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("%w: not on ed25519 curve", ErrInvalidAddress)
	}
	return nil
}
