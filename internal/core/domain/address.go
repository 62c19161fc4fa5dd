package domain

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
)

const (
	addressLength  = 58
	publicKeyLen   = 32
	checksumLength = 4
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ValidAddress reports whether s is a well-formed Algorand address: 58
// base32 characters encoding a 32-byte public key followed by the last four
// bytes of its SHA-512/256 digest.
func ValidAddress(s string) bool {
	if len(s) != addressLength {
		return false
	}
	raw, err := addressEncoding.DecodeString(s)
	if err != nil || len(raw) != publicKeyLen+checksumLength {
		return false
	}
	sum := sha512.Sum512_256(raw[:publicKeyLen])
	return bytes.Equal(sum[len(sum)-checksumLength:], raw[publicKeyLen:])
}

// EncodeAddress builds the textual address of a 32-byte public key.
func EncodeAddress(publicKey []byte) string {
	sum := sha512.Sum512_256(publicKey)
	raw := make([]byte, 0, publicKeyLen+checksumLength)
	raw = append(raw, publicKey...)
	raw = append(raw, sum[len(sum)-checksumLength:]...)
	return addressEncoding.EncodeToString(raw)
}
