package mac

import (
	"encoding/binary"
	"strings"

	"github.com/sshauthd/sshauthd/internal/autherr"
)

// Setup looks a named algorithm up in the table. A null name with
// lookup-only intent (name == "") is treated as "does this name exist
// at all" and always fails, matching configuration-validation callers
// that pre-check with Valid instead.
func Setup(name string) (Descriptor, error) {
	if name == "" {
		return Descriptor{}, &autherr.InvalidArgumentError{Reason: "empty mac algorithm name"}
	}
	d, ok := Lookup(name)
	if !ok {
		return Descriptor{}, &autherr.InvalidArgumentError{Reason: "unknown mac algorithm \"" + name + "\""}
	}
	if d.OutputLen() > MaxOutputLen {
		return Descriptor{}, &autherr.InternalError{Reason: "mac output length exceeds staging buffer"}
	}
	return d, nil
}

// Init binds key to descriptor d, constructing whatever family-
// specific state that family needs.
func Init(d Descriptor, key []byte) (*Mac, error) {
	if len(key) == 0 {
		return nil, &autherr.InvalidArgumentError{Reason: "mac key must be present"}
	}
	if len(key) < d.KeyLen() {
		return nil, &autherr.InvalidArgumentError{Reason: "mac key shorter than required key length"}
	}

	m := &Mac{
		Name:         d.Name,
		Family:       d.Family,
		OutputLen:    d.OutputLen(),
		TruncateBits: d.TruncateBits,
		ETM:          d.ETM,
		key:          append([]byte(nil), key[:d.KeyLen()]...),
	}

	switch d.Family {
	case HMAC:
		st, err := newHMACState(d.Hash, m.key)
		if err != nil {
			return nil, &autherr.CryptoError{Reason: err.Error()}
		}
		m.hmacState = st
	case UMAC64, UMAC128:
		st, err := newUMACState(d.Family, m.key)
		if err != nil {
			return nil, &autherr.CryptoError{Reason: err.Error()}
		}
		m.umacState = st
	default:
		return nil, &autherr.InvalidArgumentError{Reason: "unknown mac family"}
	}

	return m, nil
}

// Compute produces the tag over (seqno, data) per the family's rules
// and returns exactly m.OutputLen bytes.
func Compute(m *Mac, seqno uint32, data []byte) ([]byte, error) {
	if m.cleared {
		return nil, &autherr.InvalidArgumentError{Reason: "mac already cleared"}
	}

	var seqbuf [4]byte
	binary.BigEndian.PutUint32(seqbuf[:], seqno)

	switch m.Family {
	case HMAC:
		full := m.hmacState.sum(seqbuf[:], data)
		n := m.OutputLen
		if n > len(full) {
			n = len(full)
		}
		return full[:n], nil
	case UMAC64, UMAC128:
		return m.umacState.tag(seqbuf[:], data, m.OutputLen), nil
	default:
		return nil, &autherr.InvalidArgumentError{Reason: "unknown mac family"}
	}
}

// Clear destroys family-specific state and zeros the key bytes,
// marking m unusable. Safe to call more than once.
func Clear(m *Mac) {
	if m == nil || m.cleared {
		return
	}
	for i := range m.key {
		m.key[i] = 0
	}
	m.key = nil
	m.hmacState = nil
	m.umacState = nil
	m.cleared = true
}

// Valid reports whether every comma-separated token in namelist is a
// known algorithm — the check configuration loading runs over a
// MACs= setting before accepting it.
func Valid(namelist string) bool {
	if strings.TrimSpace(namelist) == "" {
		return false
	}
	for _, name := range strings.Split(namelist, ",") {
		if _, ok := Lookup(strings.TrimSpace(name)); !ok {
			return false
		}
	}
	return true
}
