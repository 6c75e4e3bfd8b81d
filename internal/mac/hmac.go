package mac

import (
	"crypto"
	"crypto/hmac"
	"hash"

	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// hmacState wraps a keyed HMAC context. It is reset and reused for
// every packet rather than reconstructed, matching the underlying
// reset-and-refeed discipline the family describes.
type hmacState struct {
	h hash.Hash
}

func newHMACState(h crypto.Hash, key []byte) (*hmacState, error) {
	if !h.Available() {
		return nil, errUnavailableHash(h)
	}
	return &hmacState{h: hmac.New(h.New, key)}, nil
}

func (s *hmacState) sum(seq, data []byte) []byte {
	s.h.Reset()
	s.h.Write(seq)
	s.h.Write(data)
	return s.h.Sum(nil)
}

type hashUnavailableError struct{ h crypto.Hash }

func (e hashUnavailableError) Error() string { return "hash function not linked into binary" }

func errUnavailableHash(h crypto.Hash) error { return hashUnavailableError{h: h} }
