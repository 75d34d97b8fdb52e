package session

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveMessage(ctx, "s1", "user", "any events tonight?"))
	require.NoError(t, s.SaveMessage(ctx, "s1", "assistant", "Found 3 events."))

	history, err := s.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "any events tonight?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.False(t, history[0].At.IsZero())
}

func TestLoadHistoryPreservesInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three", "four"} {
		require.NoError(t, s.SaveMessage(ctx, "s1", "user", content))
	}

	history, err := s.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, want := range []string{"one", "two", "three", "four"} {
		assert.Equal(t, want, history[i].Content)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveMessage(ctx, "alice", "user", "hello"))
	require.NoError(t, s.SaveMessage(ctx, "bob", "user", "hi"))

	history, err := s.LoadHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestLoadHistoryUnknownSessionIsEmpty(t *testing.T) {
	s := openTestStore(t)

	history, err := s.LoadHistory(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOpenCreatesFileAndSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveMessage(ctx, "s1", "user", "remember me"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	history, err := s.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "remember me", history[0].Content)
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.True(t, strings.HasPrefix(a, "SES-"))
	assert.Len(t, a, len("SES-")+32)
	assert.NotEqual(t, a, b)
}
