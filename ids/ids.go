// Package ids implements the identifier utilities shared across the
// indexer: deterministic and random UUID generation, the legacy base58
// encoding accepted at input boundaries, and EIP-55/EIP-1191 address
// checksumming.
package ids

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// Derive computes a stable UUID from text by hashing it with MD5 and
// masking the result into UUIDv4 shape (version nibble 4, RFC4122 variant),
// matching create_id_from_unique_string's Builder::from_random_bytes. Two
// calls with the same text always produce the same id; this is used
// wherever an id must be reproducible from input (a space from
// network+dao-address, an edit from its content URI, a relation from its
// canonical tuple).
func Derive(text string) uuid.UUID {
	sum := md5.Sum([]byte(text))
	sum[6] = (sum[6] & 0x0f) | 0x40
	sum[8] = (sum[8] & 0x3f) | 0x80
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		// sum is always exactly 16 bytes; FromBytes only fails on length.
		panic("ids: md5 sum did not produce 16 bytes")
	}
	return id
}

// Fresh returns a new random UUIDv4, for ad hoc ids such as request ids or
// generated block ids.
func Fresh() uuid.UUID {
	return uuid.New()
}
