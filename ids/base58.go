package ids

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// base58Alphabet is the Bitcoin-style alphabet (no 0, O, I, l) used for the
// legacy textual encoding of a UUID's 128-bit integer value.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i, c := range base58Alphabet {
		idx[byte(c)] = int8(i)
	}
	return idx
}()

// EncodeBase58 renders id's 128-bit value in the legacy base58 alphabet.
// There is no leading-zero padding: the all-zero UUID encodes to the empty
// string, matching the reference encoder.
func EncodeBase58(id uuid.UUID) string {
	value := new(big.Int).SetBytes(id[:])
	if value.Sign() == 0 {
		return ""
	}

	base := big.NewInt(58)
	mod := new(big.Int)
	buf := make([]byte, 0, 22)
	for value.Sign() > 0 {
		value.DivMod(value, base, mod)
		buf = append(buf, base58Alphabet[mod.Int64()])
	}

	// buf was built least-significant digit first; reverse it.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// DecodeBase58 parses a legacy base58-encoded UUID string back into a
// uuid.UUID. It rejects characters outside the legacy alphabet.
func DecodeBase58(encoded string) (uuid.UUID, error) {
	value := new(big.Int)
	base := big.NewInt(58)
	for i := 0; i < len(encoded); i++ {
		digit := base58Index[encoded[i]]
		if digit < 0 {
			return uuid.UUID{}, fmt.Errorf("ids: invalid base58 character %q at position %d", encoded[i], i)
		}
		value.Mul(value, base)
		value.Add(value, big.NewInt(int64(digit)))
	}

	var out [16]byte
	value.FillBytes(out[:])
	return uuid.UUID(out), nil
}

// CanonicalizeUUID accepts either a canonical UUID string or a legacy
// base58-encoded UUID and returns the canonical uuid.UUID. Boundaries that
// consume ids from the chain or from IPFS-hosted documents call this so
// storage and comparisons only ever see canonical UUIDs.
func CanonicalizeUUID(text string) (uuid.UUID, error) {
	if id, err := uuid.Parse(text); err == nil {
		return id, nil
	}
	return DecodeBase58(text)
}
