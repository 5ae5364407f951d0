package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchboard-chat-server/domain"
)

func TestRegistry_Register(t *testing.T) {
	r := New()

	s, err := r.Register("c1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "c1", s.ID)
	assert.Equal(t, "alice", s.Username)
	assert.False(t, s.JoinedAt.IsZero())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RegisterDuplicateOverwrites(t *testing.T) {
	r := New()

	_, err := r.Register("c1", "alice")
	require.NoError(t, err)

	s, err := r.Register("c1", "alice-again")
	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)
	assert.Equal(t, "alice-again", s.Username)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "alice-again", got.Username)
}

func TestRegistry_Remove(t *testing.T) {
	r := New()
	r.Register("c1", "alice")

	s, removed := r.Remove("c1")
	assert.True(t, removed)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, 0, r.Len())

	_, removed = r.Remove("c1")
	assert.False(t, removed, "second remove must be a no-op")

	_, removed = r.Remove("never-registered")
	assert.False(t, removed)
}

func TestRegistry_Get(t *testing.T) {
	r := New()
	r.Register("c1", "alice")

	s, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", s.Username)

	_, ok = r.Get("c2")
	assert.False(t, ok)
}

func TestRegistry_ListJoinOrder(t *testing.T) {
	r := New()
	r.Register("c1", "alice")
	r.Register("c2", "bob")
	r.Register("c3", "carol")

	names := func() []string {
		var out []string
		for _, s := range r.List() {
			out = append(out, s.Username)
		}
		return out
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, names())

	r.Remove("c2")
	assert.Equal(t, []string{"alice", "carol"}, names())

	r.Register("c4", "dave")
	assert.Equal(t, []string{"alice", "carol", "dave"}, names())
}
