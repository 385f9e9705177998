package ids

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_StableAndValid(t *testing.T) {
	a := Derive("GEO:0xcD48eF54771d9cf7dDA324c64bF4e53C161aF294")
	b := Derive("GEO:0xcD48eF54771d9cf7dDA324c64bF4e53C161aF294")
	assert.Equal(t, a, b)
	assert.NotEqual(t, uuid.Nil, a)
}

func TestDerive_MatchesLegacyBase58(t *testing.T) {
	// MD5("GEO:0xcD48eF54771d9cf7dDA324c64bF4e53C161aF294") =
	// 5e0f8e1e8c74c7772f7bcfdfbe491bf8, masked into UUIDv4 shape
	// (5e0f8e1e-8c74-4777-af7b-cfdfbe491bf8) and base58-encoded.
	id := Derive("GEO:0xcD48eF54771d9cf7dDA324c64bF4e53C161aF294")
	assert.Equal(t, "CcfwYtMtsZ2Tk8UZBnCTmH", EncodeBase58(id))
}

func TestDerive_ProducesUUIDv4Shape(t *testing.T) {
	id := Derive("GEO:0xcD48eF54771d9cf7dDA324c64bF4e53C161aF294")
	assert.Equal(t, byte(4), id[6]>>4)
	assert.Equal(t, byte(0x02), id[8]>>6)
}

func TestBase58_RoundTrip(t *testing.T) {
	cases := []string{
		"1cc6995f-6cc2-4c7a-9592-1466bf95f6be",
		"08c4f093-7858-4b7c-9b94-b82e448abcff",
	}
	for _, raw := range cases {
		id := uuid.MustParse(raw)
		encoded := EncodeBase58(id)
		decoded, err := DecodeBase58(encoded)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestBase58_KnownVectors(t *testing.T) {
	assert.Equal(t, "4Z6VLmpipszCVZb21Fey5F", EncodeBase58(uuid.MustParse("1cc6995f-6cc2-4c7a-9592-1466bf95f6be")))
	assert.Equal(t, "25omwWh6HYgeRQKCaSpVpa", EncodeBase58(uuid.MustParse("08c4f093-7858-4b7c-9b94-b82e448abcff")))

	decoded, err := DecodeBase58("4Z6VLmpipszCVZb21Fey5F")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("1cc6995f-6cc2-4c7a-9592-1466bf95f6be"), decoded)
}

func TestBase58_RejectsInvalidCharacter(t *testing.T) {
	_, err := DecodeBase58("0OIl")
	assert.Error(t, err)
}

func TestCanonicalizeUUID_AcceptsBothForms(t *testing.T) {
	canonical := uuid.MustParse("1cc6995f-6cc2-4c7a-9592-1466bf95f6be")

	got, err := CanonicalizeUUID(canonical.String())
	require.NoError(t, err)
	assert.Equal(t, canonical, got)

	got, err = CanonicalizeUUID("4Z6VLmpipszCVZb21Fey5F")
	require.NoError(t, err)
	assert.Equal(t, canonical, got)
}

func TestChecksum_KnownVector(t *testing.T) {
	got, err := Checksum("0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", nil)
	require.NoError(t, err)
	assert.Equal(t, "0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c", got)
}

func TestChecksum_ChainIDVariant(t *testing.T) {
	one := uint32(1)
	got, err := Checksum("0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", &one)
	require.NoError(t, err)
	assert.Equal(t, "0x5A0B54d5dC17e0AAdC383d2db43b0a0d3E029C4c", got)

	four := uint32(4)
	got, err = Checksum("0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", &four)
	require.NoError(t, err)
	assert.Equal(t, "0x5A0B54D5dC17e0AaDC383D2DB43b0A0d3e029C4c", got)
}

func TestChecksum_RoundTripOnLowercaseInput(t *testing.T) {
	checksummed, err := Checksum("0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", nil)
	require.NoError(t, err)

	again, err := Checksum(strings.ToLower(checksummed), nil)
	require.NoError(t, err)
	assert.Equal(t, checksummed, again)
}

func TestChecksum_RejectsMalformedAddress(t *testing.T) {
	_, err := Checksum("not-an-address", nil)
	assert.Error(t, err)
}
