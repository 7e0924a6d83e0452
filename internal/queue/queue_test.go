package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fillQueue(q *Queue, n int) {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = "track.mp3"
	}
	q.Add(paths)
}

// Invariant 6: next_index followed by prev_index returns to the original
// index whenever the queue is non-empty and the mode is not RepeatOne.
func TestNextPrevRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		mode := rapid.SampledFrom([]LoopMode{Off, LoopAll, Shuffle}).Draw(t, "mode")
		start := rapid.IntRange(0, n-1).Draw(t, "start")

		q := New()
		fillQueue(q, n)
		q.SetLoopMode(mode)
		q.SetCurrentIndex(start)

		next, ok := q.NextIndex()
		if !ok {
			// Off mode at the end of the queue: no round trip to verify.
			return
		}
		q.SetCurrentIndex(next)
		back, ok := q.PrevIndex()
		require.True(t, ok)
		assert.Equal(t, start, back)
	})
}

func TestRepeatOneIsSelfInverse(t *testing.T) {
	q := New()
	fillQueue(q, 3)
	q.SetLoopMode(RepeatOne)
	q.SetCurrentIndex(1)

	next, ok := q.NextIndex()
	require.True(t, ok)
	assert.Equal(t, 1, next)

	prev, ok := q.PrevIndex()
	require.True(t, ok)
	assert.Equal(t, 1, prev)
}

// Invariant 7: after reshuffle, shuffle_order is a permutation of [0, len(items)).
func TestReshuffleIsPermutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		q := New()
		fillQueue(q, n)
		q.Reshuffle()

		seen := make(map[int]bool, n)
		order := q.ShuffleOrder()
		require.Len(t, order, n)
		for _, idx := range order {
			require.False(t, seen[idx], "duplicate index %d", idx)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, n)
			seen[idx] = true
		}
	})
}

// Scenario F — shuffle reachability: from any starting index, N
// consecutive NextIndex calls visit every index exactly once before repeating.
func TestScenarioF_ShuffleReachability(t *testing.T) {
	q := New()
	fillQueue(q, 5)
	q.SetLoopMode(Shuffle)

	for start := 0; start < 5; start++ {
		q.SetCurrentIndex(start)
		visited := map[int]bool{start: true}
		idx := start
		for i := 0; i < 4; i++ {
			next, ok := q.NextIndex()
			require.True(t, ok)
			require.False(t, visited[next], "revisited %d before covering all", next)
			visited[next] = true
			idx = next
			q.SetCurrentIndex(idx)
		}
		assert.Len(t, visited, 5)

		// A fifth step returns to start, completing the cycle.
		next, ok := q.NextIndex()
		require.True(t, ok)
		assert.Equal(t, start, next)
		q.SetCurrentIndex(start)
	}
}

// Boundary: removing the current queue item reduces length by 1 and
// leaves current_index valid (or None when the queue empties).
func TestRemoveCurrentItem(t *testing.T) {
	q := New()
	ids := q.Add([]string{"a.mp3", "b.mp3", "c.mp3"})
	q.SetCurrentIndex(1)

	removed := q.Remove(ids[1])
	require.True(t, removed)
	assert.Equal(t, 2, q.Len())
	idx, ok := q.CurrentIndex()
	require.True(t, ok)
	assert.Less(t, idx, q.Len())

	q.SetCurrentIndex(0)
	for q.Len() > 0 {
		cur, _ := q.Current()
		q.Remove(cur.ID)
	}
	_, ok = q.CurrentIndex()
	assert.False(t, ok)
}

func TestAddReturnsMonotonicIDs(t *testing.T) {
	q := New()
	ids := q.Add([]string{"a.mp3", "b.mp3"})
	require.Len(t, ids, 2)
	assert.Less(t, ids[0], ids[1])

	more := q.Add([]string{"c.mp3"})
	assert.Less(t, ids[1], more[0])
}

func TestEmptyQueueHasNoNext(t *testing.T) {
	q := New()
	_, ok := q.NextIndex()
	assert.False(t, ok)
	_, ok = q.PrevIndex()
	assert.False(t, ok)
}
