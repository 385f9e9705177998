package ids

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Checksum renders an Ethereum address in EIP-55 mixed-case checksum form.
// chainID, when non-nil, applies the EIP-1191 variant: the decimal chain id
// is prepended to the lowercased address before hashing, so the same
// address checksums differently on different chains.
func Checksum(address string, chainID *uint32) (string, error) {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return "", fmt.Errorf("ids: %q is not a well-formed 20-byte hex address", address)
	}
	lower := strings.ToLower(address)

	var hashInput string
	if chainID != nil {
		hashInput = strconv.FormatUint(uint64(*chainID), 10) + lower
	} else {
		hashInput = lower[2:]
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(hashInput))
	digest := hash.Sum(nil)

	// The hash covers the chain-id prefix (when present) but the nibble
	// lookup always walks the digest from byte 0 — only the slice of
	// characters being upper-cased shifts past the chain-id digits.
	chars := []byte(lower[2:])

	for i := 0; i < 40; i++ {
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 && chars[i] >= 'a' && chars[i] <= 'f' {
			chars[i] -= 'a' - 'A'
		}
	}

	return "0x" + string(chars), nil
}
