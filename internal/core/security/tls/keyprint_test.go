package tls

import (
	"crypto/sha256"
	"encoding/base32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckKeyprint_EmptyLocalPasses(t *testing.T) {
	assert.True(t, CheckKeyprint(nil, "SHA256/AAAA"))
}

func TestCheckKeyprint_EmptyAdvertisedPasses(t *testing.T) {
	assert.True(t, CheckKeyprint([]byte{1, 2, 3}, ""))
}

func TestCheckKeyprint_UnknownAlgoPasses(t *testing.T) {
	assert.True(t, CheckKeyprint([]byte{1, 2, 3}, "MD5/AAAA"))
}

func TestCheckKeyprint_MatchPasses(t *testing.T) {
	digest := sha256.Sum256([]byte("leaf-cert-bytes"))
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(digest[:])
	assert.True(t, CheckKeyprint(digest[:], "SHA256/"+encoded))
}

func TestCheckKeyprint_MismatchFails(t *testing.T) {
	digest := sha256.Sum256([]byte("leaf-cert-bytes"))
	other := sha256.Sum256([]byte("different-cert-bytes"))
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(other[:])
	assert.False(t, CheckKeyprint(digest[:], "SHA256/"+encoded))
}

func TestCheckKeyprint_MalformedBase32Fails(t *testing.T) {
	assert.False(t, CheckKeyprint([]byte{1, 2, 3}, "SHA256/not-valid-base32!!!"))
}

func TestLeafDigest_NoCerts(t *testing.T) {
	_, err := LeafDigest(nil)
	assert.ErrorIs(t, err, ErrNoCertificate)
}
