package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVisibility(t *testing.T) {
	public := NewMessage(TypeNarration, "narrator", "", "The fog rolls in.", 1)
	assert.True(t, public.VisibleTo("char-aldric"))
	assert.True(t, public.VisibleTo(""))

	private := NewPrivateMessage(TypePlayer, "character", "char-mira", "psst", 1, "char-aldric")
	assert.True(t, private.VisibleTo("char-aldric"))
	assert.True(t, private.VisibleTo("char-mira"), "sender can read their own message")
	assert.False(t, private.VisibleTo("char-boris"))
	assert.False(t, private.VisibleTo(""))
}

func TestHistoryRoundIndexing(t *testing.T) {
	h := NewHistory()
	h.Append(NewMessage(TypeNarration, "narrator", "", "round one opens", 1))
	h.Append(NewMessage(TypeAction, "character", "char-aldric", "searches the crates", 1))
	h.Append(NewMessage(TypeNarration, "narrator", "", "round two opens", 2))
	h.Append(NewMessage(TypeAction, "character", "char-mira", "keeps watch", 3))

	assert.Len(t, h.Round(1), 2)
	assert.Len(t, h.Round(2), 1)
	assert.Empty(t, h.Round(99))
	assert.Equal(t, []int{1, 2, 3}, h.Rounds())

	ranged := h.Range(1, 2)
	require.Len(t, ranged, 3)
	assert.Equal(t, "round one opens", ranged[0].Content)
	assert.Equal(t, "round two opens", ranged[2].Content)
}

func TestHistoryVisibleRangeFiltersPrivate(t *testing.T) {
	h := NewHistory()
	h.Append(NewMessage(TypeNarration, "narrator", "", "public", 1))
	h.Append(NewPrivateMessage(TypeSystem, "system", "", "for aldric only", 1, "char-aldric"))

	assert.Len(t, h.VisibleRange(1, 1, "char-aldric"), 2)
	assert.Len(t, h.VisibleRange(1, 1, "char-mira"), 1)
}

func TestHistoryRestoreReplacesContents(t *testing.T) {
	h := NewHistory()
	h.Append(NewMessage(TypeNarration, "narrator", "", "stale", 5))

	saved := map[int][]Message{
		1: {NewMessage(TypeNarration, "narrator", "", "restored", 1)},
	}
	h.Restore(saved)
	assert.Empty(t, h.Round(5))
	require.Len(t, h.Round(1), 1)
	assert.Equal(t, "restored", h.Round(1)[0].Content)

	// Exported copies do not alias internal storage.
	exported := h.Export()
	exported[1][0].Content = "mutated"
	assert.Equal(t, "restored", h.Round(1)[0].Content)
}

func TestDispatcherFiltersAndRecords(t *testing.T) {
	h := NewHistory()
	d := NewDispatcher(h, zap.NewNop())

	var aldricGot, observerGot []string
	d.Subscribe("char-aldric", SubscriberFunc(func(m Message) error {
		aldricGot = append(aldricGot, m.Content)
		return nil
	}))
	d.Subscribe("", SubscriberFunc(func(m Message) error {
		observerGot = append(observerGot, m.Content)
		return nil
	}))

	d.Broadcast(NewMessage(TypeNarration, "narrator", "", "public line", 1))
	d.Broadcast(NewPrivateMessage(TypeSystem, "system", "", "secret line", 1, "char-aldric"))

	assert.Equal(t, []string{"public line", "secret line"}, aldricGot)
	assert.Equal(t, []string{"public line"}, observerGot)
	assert.Len(t, h.Round(1), 2, "private messages are still recorded")
}

func TestDispatcherFailingSubscriberIsSkipped(t *testing.T) {
	h := NewHistory()
	d := NewDispatcher(h, zap.NewNop())

	d.Subscribe("", SubscriberFunc(func(m Message) error {
		return errors.New("connection lost")
	}))
	var got int
	d.Subscribe("", SubscriberFunc(func(m Message) error {
		got++
		return nil
	}))

	d.Broadcast(NewMessage(TypeNarration, "narrator", "", "still delivered", 1))
	assert.Equal(t, 1, got)
	assert.Len(t, h.Round(1), 1)
}

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewDispatcher(NewHistory(), zap.NewNop())
	var got int
	handle := d.Subscribe("", SubscriberFunc(func(m Message) error {
		got++
		return nil
	}))
	d.Broadcast(NewMessage(TypeSystem, "system", "", "one", 1))
	d.Unsubscribe(handle)
	d.Broadcast(NewMessage(TypeSystem, "system", "", "two", 1))
	assert.Equal(t, 1, got)
}
