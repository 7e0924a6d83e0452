// Package queue implements the ordered playback queue with loop-mode
// dependent next/previous selection and Fisher-Yates shuffle.
package queue

import (
	"math/rand"

	"audido/internal/audio"
)

// LoopMode controls how Next/Prev select the following track.
type LoopMode int

const (
	Off LoopMode = iota
	RepeatOne
	LoopAll
	Shuffle
)

func (m LoopMode) String() string {
	switch m {
	case RepeatOne:
		return "One"
	case LoopAll:
		return "All"
	case Shuffle:
		return "Shuffle"
	default:
		return "Off"
	}
}

// Item is a single entry in the playback queue. Id is monotonically
// increasing and stable across reorders.
type Item struct {
	ID       int64
	Path     string
	Metadata *audio.Metadata // populated lazily when the item becomes current
}

// Queue is the ordered playback queue, tracking the current position and
// loop mode used to compute next/previous transitions.
type Queue struct {
	items        []Item
	currentIndex int // -1 means none
	loopMode     LoopMode
	shuffleOrder []int
	nextID       int64
	rng          *rand.Rand
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{currentIndex: -1, rng: rand.New(rand.NewSource(1))}
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int { return len(q.items) }

// Items returns a copy of the ordered item list.
func (q *Queue) Items() []Item {
	return append([]Item(nil), q.items...)
}

// CurrentIndex returns the current index, or (0, false) if none is set.
func (q *Queue) CurrentIndex() (int, bool) {
	if q.currentIndex < 0 {
		return 0, false
	}
	return q.currentIndex, true
}

// SetCurrentIndex sets the current index directly (used by the engine to
// select a track by index); an out-of-range index clears it.
func (q *Queue) SetCurrentIndex(i int) {
	if i < 0 || i >= len(q.items) {
		q.currentIndex = -1
		return
	}
	q.currentIndex = i
}

// LoopMode returns the current loop mode.
func (q *Queue) LoopMode() LoopMode { return q.loopMode }

// SetLoopMode stores the loop mode, reshuffling if entering Shuffle.
func (q *Queue) SetLoopMode(m LoopMode) {
	q.loopMode = m
	if m == Shuffle {
		q.Reshuffle()
	}
}

// Add appends paths to the queue, assigning fresh monotonic ids, and
// returns the assigned ids. Reshuffles if currently in Shuffle mode.
func (q *Queue) Add(paths []string) []int64 {
	ids := make([]int64, len(paths))
	for i, p := range paths {
		id := q.nextID
		q.nextID++
		q.items = append(q.items, Item{ID: id, Path: p})
		ids[i] = id
	}
	if q.loopMode == Shuffle {
		q.Reshuffle()
	}
	return ids
}

// Remove deletes the item with the given id, adjusting currentIndex.
// Returns true if an item was found and removed.
func (q *Queue) Remove(id int64) bool {
	pos := -1
	for i, it := range q.items {
		if it.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}
	q.items = append(q.items[:pos], q.items[pos+1:]...)

	if q.currentIndex >= 0 {
		switch {
		case pos < q.currentIndex:
			q.currentIndex--
		case pos == q.currentIndex:
			if len(q.items) == 0 {
				q.currentIndex = -1
			} else if q.currentIndex >= len(q.items) {
				q.currentIndex = len(q.items) - 1
			}
		}
	}

	if q.loopMode == Shuffle {
		q.Reshuffle()
	}
	return true
}

// Clear empties the queue entirely.
func (q *Queue) Clear() {
	q.items = nil
	q.currentIndex = -1
	q.shuffleOrder = nil
}

// Get returns the item at idx, or (zero, false) if out of range.
func (q *Queue) Get(idx int) (Item, bool) {
	if idx < 0 || idx >= len(q.items) {
		return Item{}, false
	}
	return q.items[idx], true
}

// Current returns the current item, or (zero, false) if none is set.
func (q *Queue) Current() (Item, bool) {
	return q.Get(q.currentIndex)
}

// SetMetadata attaches metadata to the item with the given id.
func (q *Queue) SetMetadata(id int64, m audio.Metadata) {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Metadata = &m
			return
		}
	}
}

// NextIndex returns the next index to play given the current loop mode, or
// (0, false) when no track is available.
func (q *Queue) NextIndex() (int, bool) {
	if q.currentIndex < 0 || len(q.items) == 0 {
		return 0, false
	}
	current := q.currentIndex
	switch q.loopMode {
	case Off:
		if current+1 < len(q.items) {
			return current + 1, true
		}
		return 0, false
	case RepeatOne:
		return current, true
	case LoopAll:
		return (current + 1) % len(q.items), true
	case Shuffle:
		pos := q.positionInShuffle(current)
		if pos < 0 {
			if len(q.shuffleOrder) == 0 {
				return 0, false
			}
			return q.shuffleOrder[0], true
		}
		return q.shuffleOrder[(pos+1)%len(q.shuffleOrder)], true
	default:
		return 0, false
	}
}

// PrevIndex returns the previous index to play given the current loop
// mode, or (0, false) when no track is available.
func (q *Queue) PrevIndex() (int, bool) {
	if q.currentIndex < 0 || len(q.items) == 0 {
		return 0, false
	}
	current := q.currentIndex
	switch q.loopMode {
	case Off:
		if current > 0 {
			return current - 1, true
		}
		return 0, false
	case RepeatOne:
		return current, true
	case LoopAll:
		if current > 0 {
			return current - 1, true
		}
		return len(q.items) - 1, true
	case Shuffle:
		pos := q.positionInShuffle(current)
		if pos < 0 {
			if len(q.shuffleOrder) == 0 {
				return 0, false
			}
			return q.shuffleOrder[len(q.shuffleOrder)-1], true
		}
		prev := pos - 1
		if prev < 0 {
			prev = len(q.shuffleOrder) - 1
		}
		return q.shuffleOrder[prev], true
	default:
		return 0, false
	}
}

func (q *Queue) positionInShuffle(idx int) int {
	for i, v := range q.shuffleOrder {
		if v == idx {
			return i
		}
	}
	return -1
}

// Reshuffle regenerates the shuffle permutation with Fisher-Yates.
// currentIndex is left untouched; only the future-step order changes.
func (q *Queue) Reshuffle() {
	order := make([]int, len(q.items))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := q.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	q.shuffleOrder = order
}

// ShuffleOrder returns a copy of the current shuffle permutation.
func (q *Queue) ShuffleOrder() []int {
	return append([]int(nil), q.shuffleOrder...)
}
