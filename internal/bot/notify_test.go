package bot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishmix/servebot/internal/logger"
)

func TestNotifierFires(t *testing.T) {
	msgr := newMockMessenger()
	n := NewNotifier(msgr, logger.NewWithWriter(&bytes.Buffer{}))
	defer n.Shutdown()

	n.Schedule(42, time.Now().Add(10*time.Millisecond), "chan-1", infoEmbed("open"))

	require.Eventually(t, func() bool {
		return len(msgr.embedsTo("chan-1")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, n.Pending(42))
}

func TestNotifierCancelPreventsDelivery(t *testing.T) {
	msgr := newMockMessenger()
	n := NewNotifier(msgr, logger.NewWithWriter(&bytes.Buffer{}))
	defer n.Shutdown()

	n.Schedule(42, time.Now().Add(30*time.Millisecond), "chan-1", infoEmbed("open"))
	require.True(t, n.Pending(42))
	n.Cancel(42)

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, msgr.embedsTo("chan-1"))
	assert.False(t, n.Pending(42))

	// Canceling again is a no-op.
	n.Cancel(42)
}

func TestNotifierRescheduleReplaces(t *testing.T) {
	msgr := newMockMessenger()
	n := NewNotifier(msgr, logger.NewWithWriter(&bytes.Buffer{}))
	defer n.Shutdown()

	n.Schedule(42, time.Now().Add(time.Hour), "chan-old", infoEmbed("open"))
	n.Schedule(42, time.Now().Add(10*time.Millisecond), "chan-new", infoEmbed("open"))

	require.Eventually(t, func() bool {
		return len(msgr.embedsTo("chan-new")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, msgr.embedsTo("chan-old"))
}

func TestNotifierShutdownDisarmsAll(t *testing.T) {
	msgr := newMockMessenger()
	n := NewNotifier(msgr, logger.NewWithWriter(&bytes.Buffer{}))

	n.Schedule(1, time.Now().Add(time.Hour), "chan-1", infoEmbed("open"))
	n.Schedule(2, time.Now().Add(time.Hour), "chan-1", infoEmbed("open"))
	n.Shutdown()

	assert.False(t, n.Pending(1))
	assert.False(t, n.Pending(2))
}
