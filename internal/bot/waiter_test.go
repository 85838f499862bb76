package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReactionResolvesOnMatch(t *testing.T) {
	w := NewWaiter()
	done := make(chan struct{})
	defer close(done)
	go pump(done, func() { w.Reaction("msg-1", "u1", "🇧") })

	emoji, err := w.AwaitReaction(context.Background(), "msg-1", "u1", []string{"🇦", "🇧"}, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "🇧", emoji)
}

func TestAwaitReactionIgnoresForeignEvents(t *testing.T) {
	w := NewWaiter()
	done := make(chan struct{})
	defer close(done)
	go pump(done, func() {
		w.Reaction("msg-1", "intruder", "🇦") // wrong user
		w.Reaction("msg-2", "u1", "🇦")       // wrong message
		w.Reaction("msg-1", "u1", "💥")       // emoji outside the label set
	})

	_, err := w.AwaitReaction(context.Background(), "msg-1", "u1", []string{"🇦", "🇧"}, 80*time.Millisecond)
	assert.ErrorIs(t, err, ErrSelectionTimeout)
}

func TestAwaitMessageResolves(t *testing.T) {
	w := NewWaiter()
	done := make(chan struct{})
	defer close(done)
	go pump(done, func() { w.Message("dm-1", "u1", "the-secret") })

	content, err := w.AwaitMessage(context.Background(), "dm-1", "u1", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "the-secret", content)
}

func TestAwaitRespectsContextCancel(t *testing.T) {
	w := NewWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.AwaitReaction(ctx, "msg-1", "u1", []string{"🇦"}, time.Second)
	assert.True(t, errors.Is(err, context.Canceled))
}
