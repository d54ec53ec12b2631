package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerValidate(t *testing.T) {
	require.NoError(t, User(1).Validate())
	require.NoError(t, Session("abc").Validate())

	assert.ErrorIs(t, User(0).Validate(), ErrUnauthenticated)
	assert.ErrorIs(t, Session("").Validate(), ErrUnauthenticated)
	assert.ErrorIs(t, Owner{}.Validate(), ErrUnauthenticated)
}

func TestOwnerKinds(t *testing.T) {
	assert.True(t, User(1).IsUser())
	assert.False(t, User(1).IsSession())
	assert.True(t, Session("abc").IsSession())
	assert.False(t, Session("abc").IsUser())
}

func TestOwnerString(t *testing.T) {
	assert.Equal(t, "user:42", User(42).String())
	assert.Equal(t, "session:abc", Session("abc").String())
}
