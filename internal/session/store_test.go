package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yshirakawa/station-fit/internal/domain"
)

func testState() State {
	return State{
		Answers: []domain.Answer{
			{QuestionID: "q1", OptionID: "a", AnsweredAt: time.Now().UTC().Truncate(time.Second)},
		},
	}
}

func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("get missing session", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "s1", testState()))

		state, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, state.Answers, 1)
		require.Equal(t, "q1", state.Answers[0].QuestionID)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := store.Exists(ctx, "s1")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Exists(ctx, "missing")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		state := testState()
		state.Answers = append(state.Answers, domain.Answer{QuestionID: "q2", OptionID: "b"})
		require.NoError(t, store.Put(ctx, "s1", state))

		got, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, got.Answers, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "s1"))

		_, err := store.Get(ctx, "s1")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete missing session", func(t *testing.T) {
		require.ErrorIs(t, store.Delete(ctx, "never-existed"), ErrSessionNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	runStoreTests(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	t.Parallel()

	store, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreTests(t, store)
}

func TestMemoryStore_ProfilePointerStable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	profile := &domain.UserProfile{Priorities: []string{"quiet"}}
	require.NoError(t, store.Put(ctx, "s1", State{Profile: profile}))

	first, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	require.Same(t, profile, first.Profile)
	require.Same(t, first.Profile, second.Profile)
}
