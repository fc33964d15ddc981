// Package solana provides address validation helpers.
package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// addressLength is the byte length of a Solana public key.
const addressLength = 32

// ValidateAddress reports whether s decodes as a 32-byte base58 value.
func ValidateAddress(s string) bool {
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == addressLength
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Program-derived addresses are intentionally off-curve, so this
// distinguishes user wallets from PDAs in holder lists.
func IsOnCurve(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != addressLength {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// IsWalletAddress reports whether the address is well-formed and on-curve,
// i.e. plausibly a user wallet rather than a PDA.
func IsWalletAddress(address string) bool {
	return ValidateAddress(address) && IsOnCurve(address)
}
