package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan *Identity) *Identity {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for identity")
		return nil
	}
}

func TestWatchEmitsCurrentImmediately(t *testing.T) {
	m := NewMemory()
	assert.Nil(t, m.Current())

	watch := m.Watch()
	assert.Nil(t, recv(t, watch), "signed out at first")

	m.SignIn(Identity{UserID: "u1", Email: "u1@example.com"})
	got := recv(t, watch)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	require.NotNil(t, m.Current())
	assert.Equal(t, "u1", m.Current().UserID)

	m.SignOut()
	assert.Nil(t, recv(t, watch))
	assert.Nil(t, m.Current())
}

func TestWatchAfterSignInSeesIdentity(t *testing.T) {
	m := NewMemory()
	m.SignIn(Identity{UserID: "u1"})

	got := recv(t, m.Watch())
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func TestCloseEndsWatches(t *testing.T) {
	m := NewMemory()
	watch := m.Watch()
	recv(t, watch)

	m.Close()
	_, open := <-watch
	assert.False(t, open)

	// Late watchers get an already-closed channel; further sign-ins are
	// ignored.
	_, open = <-m.Watch()
	assert.False(t, open)
	require.NotPanics(t, func() { m.SignIn(Identity{UserID: "late"}) })
	assert.Nil(t, m.Current())
	require.NotPanics(t, m.Close)
}
