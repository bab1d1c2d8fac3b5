// Package wallet normalizes Ethereum-style wallet addresses.
package wallet

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/erazemk/mintmarket/internal/apperr"
)

// Normalize validates address and returns its EIP-55 checksum form.
// All-lowercase and all-uppercase hex are accepted as is; mixed case must
// already carry a valid checksum.
func Normalize(address string) (string, error) {
	hexPart, ok := strings.CutPrefix(address, "0x")
	if !ok {
		hexPart, ok = strings.CutPrefix(address, "0X")
	}
	if !ok || len(hexPart) != 40 {
		return "", apperr.Business(apperr.InvalidAddress)
	}
	if _, err := hex.DecodeString(hexPart); err != nil {
		return "", apperr.Business(apperr.InvalidAddress)
	}

	sum := checksum(hexPart)
	lower := strings.ToLower(hexPart)
	upper := strings.ToUpper(hexPart)
	if hexPart != lower && hexPart != upper && "0x"+hexPart != sum {
		return "", apperr.Business(apperr.InvalidAddress)
	}
	return sum, nil
}

// checksum applies EIP-55 mixed-case encoding to a 40-char hex string.
func checksum(hexPart string) string {
	lower := strings.ToLower(hexPart)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}
