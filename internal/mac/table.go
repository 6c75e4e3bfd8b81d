// Package mac implements the message-authentication-code registry and
// engine: a static algorithm table (HMAC family, UMAC-64/128) and the
// per-packet tag computation used to protect transport frames.
package mac

import "crypto"

// Family distinguishes the three MAC constructions this table
// supports. They share almost nothing mechanically, so each carries
// its own state rather than hiding behind a union.
type Family int

const (
	HMAC Family = iota
	UMAC64
	UMAC128
)

func (f Family) String() string {
	switch f {
	case HMAC:
		return "hmac"
	case UMAC64:
		return "umac64"
	case UMAC128:
		return "umac128"
	default:
		return "unknown"
	}
}

// Descriptor is one row of the read-only algorithm table. KeyBits and
// OutputBits are as configured (output length in bits — HMAC's is its
// underlying hash's natural length); TruncateBits is 0 when the tag is
// not shortened.
type Descriptor struct {
	Name         string
	Family       Family
	Hash         crypto.Hash // HMAC only
	KeyBits      int
	OutputBits   int
	TruncateBits int
	ETM          bool // encrypt-then-MAC: computed over ciphertext
}

// KeyLen is the key length in bytes, converted from bits at binding
// time — the table itself only ever states bits.
func (d Descriptor) KeyLen() int { return d.KeyBits / 8 }

// OutputLen is the effective tag length in bytes after truncation is
// applied; truncation is never the caller's responsibility.
func (d Descriptor) OutputLen() int {
	if d.TruncateBits > 0 {
		return d.TruncateBits / 8
	}
	return d.OutputBits / 8
}

// Table is the static catalog, seeded with every algorithm this
// repository's end-to-end scenarios exercise plus their ETM and
// truncated siblings.
var Table = []Descriptor{
	{Name: "hmac-sha1", Family: HMAC, Hash: crypto.SHA1, KeyBits: 160, OutputBits: 160},
	{Name: "hmac-sha1-96", Family: HMAC, Hash: crypto.SHA1, KeyBits: 160, OutputBits: 160, TruncateBits: 96},
	{Name: "hmac-sha2-256", Family: HMAC, Hash: crypto.SHA256, KeyBits: 256, OutputBits: 256},
	{Name: "hmac-sha2-512", Family: HMAC, Hash: crypto.SHA512, KeyBits: 512, OutputBits: 512},
	{Name: "hmac-sha2-256-etm@openssh.com", Family: HMAC, Hash: crypto.SHA256, KeyBits: 256, OutputBits: 256, ETM: true},
	{Name: "hmac-sha2-512-etm@openssh.com", Family: HMAC, Hash: crypto.SHA512, KeyBits: 512, OutputBits: 512, ETM: true},
	{Name: "umac-64@openssh.com", Family: UMAC64, KeyBits: 128, OutputBits: 64},
	{Name: "umac-128@openssh.com", Family: UMAC128, KeyBits: 128, OutputBits: 128},
	{Name: "umac-64-etm@openssh.com", Family: UMAC64, KeyBits: 128, OutputBits: 64, ETM: true},
	{Name: "umac-128-etm@openssh.com", Family: UMAC128, KeyBits: 128, OutputBits: 128, ETM: true},
}

// Lookup finds a descriptor by name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Table {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns every algorithm name in table order, the form a
// configuration's "MACs" namelist advertises.
func Names() []string {
	names := make([]string, len(Table))
	for i, d := range Table {
		names[i] = d.Name
	}
	return names
}
