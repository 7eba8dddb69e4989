package relay

import (
	"testing"
	"time"

	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/danmuck/drawembed/internal/testutil/frametest"
	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIssueClaimRelease(t *testing.T) {
	testlog.Start(t)
	r, err := NewRegistry(2, time.Minute)
	require.NoError(t, err)

	id := r.Issue()
	require.True(t, r.Reserved(id))
	ch := session.NewChannel(session.DefaultConfig(testOrigin), frametest.New(), nil)

	require.ErrorIs(t, r.Claim("missing"), ErrUnknownSession)
	require.NoError(t, r.Claim(id))
	require.ErrorIs(t, r.Claim(id), ErrSessionInUse)
	assert.False(t, r.Reserved(id))
	assert.Equal(t, 1, r.Live())
	assert.Equal(t, "connecting", r.List()[0].State)
	_, ok := r.Get(id)
	assert.False(t, ok)

	require.NoError(t, r.Bind(id, ch))
	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, ch, got)
	assert.Equal(t, "uninitialized", r.List()[0].State)
	require.ErrorIs(t, r.Bind("missing", ch), ErrUnknownSession)

	r.Release(id)
	assert.Equal(t, 0, r.Live())
	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "closed", list[0].State)
	assert.False(t, list[0].ClosedAt.IsZero())
}

func TestRegistryClosedCacheIsBounded(t *testing.T) {
	testlog.Start(t)
	r, err := NewRegistry(2, time.Minute)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		id := r.Issue()
		require.NoError(t, r.Claim(id))
		require.NoError(t, r.Bind(id, session.NewChannel(session.DefaultConfig(testOrigin), frametest.New(), nil)))
		r.Release(id)
	}
	assert.Len(t, r.List(), 2)
}

func TestRegistryExpiresIssuedIDs(t *testing.T) {
	testlog.Start(t)
	r, err := NewRegistry(4, time.Minute)
	require.NoError(t, err)
	now := time.Unix(1700000000, 0)
	r.now = func() time.Time { return now }

	id := r.Issue()
	now = now.Add(2 * time.Minute)
	assert.False(t, r.Reserved(id))
	assert.ErrorIs(t, r.Claim(id), ErrUnknownSession)
}
