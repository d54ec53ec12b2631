package wishlists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTokenCodec("test-salt")
	require.NoError(t, err)

	for _, id := range []int64{1, 42, 999999} {
		token, err := codec.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(token), 10)

		got, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	codec, err := NewTokenCodec("test-salt")
	require.NoError(t, err)

	_, err = codec.Decode("not-a-real-token")
	assert.ErrorIs(t, err, ErrBadShareToken)
}

func TestTokenCodec_SaltMatters(t *testing.T) {
	a, err := NewTokenCodec("salt-a")
	require.NoError(t, err)
	b, err := NewTokenCodec("salt-b")
	require.NoError(t, err)

	token, err := a.Encode(42)
	require.NoError(t, err)

	got, err := b.Decode(token)
	if err == nil {
		assert.NotEqual(t, int64(42), got)
	}
}
