package mac_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshauthd/sshauthd/internal/autherr"
	"github.com/sshauthd/sshauthd/internal/mac"
)

func TestSetupRejectsUnknownAlgorithm(t *testing.T) {
	_, err := mac.Setup("hmac-sha3-unknown")
	require.Error(t, err)
	var invalidErr *autherr.InvalidArgumentError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestSetupRejectsEmptyName(t *testing.T) {
	_, err := mac.Setup("")
	require.Error(t, err)
}

func TestInitRejectsShortKey(t *testing.T) {
	d, err := mac.Setup("hmac-sha2-256")
	require.NoError(t, err)

	_, err = mac.Init(d, make([]byte, 4))
	require.Error(t, err)
}

func TestInitRejectsEmptyKey(t *testing.T) {
	d, err := mac.Setup("hmac-sha2-256")
	require.NoError(t, err)

	_, err = mac.Init(d, nil)
	require.Error(t, err)
}

func TestComputeIsDeterministic(t *testing.T) {
	d, err := mac.Setup("hmac-sha2-256")
	require.NoError(t, err)
	key := bytes.Repeat([]byte{0x42}, d.KeyLen())

	m1, err := mac.Init(d, key)
	require.NoError(t, err)
	m2, err := mac.Init(d, key)
	require.NoError(t, err)

	tag1, err := mac.Compute(m1, 7, []byte("payload"))
	require.NoError(t, err)
	tag2, err := mac.Compute(m2, 7, []byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, tag1, tag2)
	assert.Len(t, tag1, d.OutputLen())
}

func TestComputeDiffersBySequenceNumber(t *testing.T) {
	d, err := mac.Setup("hmac-sha2-256")
	require.NoError(t, err)
	key := bytes.Repeat([]byte{0x11}, d.KeyLen())
	m, err := mac.Init(d, key)
	require.NoError(t, err)

	tagA, err := mac.Compute(m, 1, []byte("payload"))
	require.NoError(t, err)
	tagB, err := mac.Compute(m, 2, []byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, tagA, tagB)
}

func TestTruncatedOutputLength(t *testing.T) {
	d, err := mac.Setup("hmac-sha1-96")
	require.NoError(t, err)
	assert.Equal(t, 12, d.OutputLen())

	key := bytes.Repeat([]byte{0x01}, d.KeyLen())
	m, err := mac.Init(d, key)
	require.NoError(t, err)

	tag, err := mac.Compute(m, 0, []byte("x"))
	require.NoError(t, err)
	assert.Len(t, tag, 12)
}

func TestUMACRoundTrip(t *testing.T) {
	for _, name := range []string{"umac-64@openssh.com", "umac-128@openssh.com"} {
		d, err := mac.Setup(name)
		require.NoError(t, err)
		key := bytes.Repeat([]byte{0x07}, d.KeyLen())

		m1, err := mac.Init(d, key)
		require.NoError(t, err)
		m2, err := mac.Init(d, key)
		require.NoError(t, err)

		tag1, err := mac.Compute(m1, 3, []byte("hello umac"))
		require.NoError(t, err)
		tag2, err := mac.Compute(m2, 3, []byte("hello umac"))
		require.NoError(t, err)

		assert.Equal(t, tag1, tag2, name)
		assert.Len(t, tag1, d.OutputLen(), name)
	}
}

func TestClearDisablesMacAndIsIdempotent(t *testing.T) {
	d, err := mac.Setup("hmac-sha2-256")
	require.NoError(t, err)
	key := bytes.Repeat([]byte{0xAA}, d.KeyLen())
	m, err := mac.Init(d, key)
	require.NoError(t, err)

	mac.Clear(m)
	_, err = mac.Compute(m, 0, []byte("after clear"))
	require.Error(t, err)

	assert.NotPanics(t, func() { mac.Clear(m) })
}

func TestValidNamelist(t *testing.T) {
	assert.True(t, mac.Valid("hmac-sha2-256,hmac-sha2-512"))
	assert.False(t, mac.Valid("hmac-sha2-256,not-a-real-mac"))
	assert.False(t, mac.Valid(""))
}
