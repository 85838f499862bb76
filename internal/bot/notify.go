package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fishmix/servebot/internal/logger"
)

// Notifier holds the deferred "server is open" announcements, keyed by
// reservation id. At most one is pending per id; ending a reservation
// cancels its announcement. Cancel after fire and fire after cancel are
// both no-ops.
type Notifier struct {
	msgr Messenger
	log  *logger.Logger

	mu      sync.Mutex
	pending map[int64]chan struct{}
}

func NewNotifier(msgr Messenger, log *logger.Logger) *Notifier {
	return &Notifier{
		msgr:    msgr,
		log:     log,
		pending: make(map[int64]chan struct{}),
	}
}

// Schedule arms a notification for the reservation to fire at the given
// instant, delivering the embed to channelID. An already pending
// notification for the same id is replaced.
func (n *Notifier) Schedule(reservationID int64, at time.Time, channelID string, embed *discordgo.MessageEmbed) {
	cancel := make(chan struct{})

	n.mu.Lock()
	if prev, ok := n.pending[reservationID]; ok {
		close(prev)
	}
	n.pending[reservationID] = cancel
	n.mu.Unlock()

	go func() {
		timer := time.NewTimer(time.Until(at))
		defer timer.Stop()

		select {
		case <-cancel:
			return
		case <-timer.C:
		}

		// Claim the entry under the lock; a concurrent Cancel that won
		// the race makes this a no-op.
		n.mu.Lock()
		current, ok := n.pending[reservationID]
		if !ok || current != cancel {
			n.mu.Unlock()
			return
		}
		delete(n.pending, reservationID)
		n.mu.Unlock()

		if _, err := n.msgr.SendEmbed(channelID, embed); err != nil {
			n.log.Error("Failed to deliver open notification",
				logger.Reservation(reservationID), logger.Channel(channelID), logger.Error(err))
			return
		}
		n.log.Info("Open notification delivered",
			logger.Action("notify"), logger.Reservation(reservationID), logger.Channel(channelID))
	}()
}

// Cancel disarms the pending notification for the reservation, if any.
func (n *Notifier) Cancel(reservationID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if cancel, ok := n.pending[reservationID]; ok {
		close(cancel)
		delete(n.pending, reservationID)
	}
}

// Pending reports whether a notification is still armed for the reservation.
func (n *Notifier) Pending(reservationID int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.pending[reservationID]
	return ok
}

// Shutdown disarms everything.
func (n *Notifier) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, cancel := range n.pending {
		close(cancel)
		delete(n.pending, id)
	}
}
