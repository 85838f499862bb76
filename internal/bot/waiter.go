package bot

import (
	"context"
	"sync"
	"time"
)

// Waiter is the suspension primitive behind every "wait for the requester"
// step: reaction menus and private-message prompts. Gateway handlers feed
// events in; flows block on AwaitReaction/AwaitMessage with a timeout.
// Every invocation resolves exactly once, and its listener is always
// removed, matched or not.
type Waiter struct {
	mu        sync.Mutex
	nextID    int
	reactions map[int]*reactionListener
	messages  map[int]*messageListener
}

type reactionListener struct {
	messageID string
	userID    string
	emojis    map[string]bool
	ch        chan string
}

type messageListener struct {
	channelID string
	userID    string
	ch        chan string
}

func NewWaiter() *Waiter {
	return &Waiter{
		reactions: make(map[int]*reactionListener),
		messages:  make(map[int]*messageListener),
	}
}

// AwaitReaction blocks until userID reacts to messageID with one of the
// given emojis, and returns that emoji. Reactions from other users, on other
// messages, or with other emojis are ignored, not consumed.
func (w *Waiter) AwaitReaction(ctx context.Context, messageID, userID string, emojis []string, timeout time.Duration) (string, error) {
	set := make(map[string]bool, len(emojis))
	for _, e := range emojis {
		set[e] = true
	}
	l := &reactionListener{
		messageID: messageID,
		userID:    userID,
		emojis:    set,
		ch:        make(chan string, 1),
	}

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.reactions[id] = l
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.reactions, id)
		w.mu.Unlock()
	}()

	return w.wait(ctx, l.ch, timeout)
}

// AwaitMessage blocks until userID posts in channelID and returns the
// trimmed message content.
func (w *Waiter) AwaitMessage(ctx context.Context, channelID, userID string, timeout time.Duration) (string, error) {
	l := &messageListener{
		channelID: channelID,
		userID:    userID,
		ch:        make(chan string, 1),
	}

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.messages[id] = l
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.messages, id)
		w.mu.Unlock()
	}()

	return w.wait(ctx, l.ch, timeout)
}

func (w *Waiter) wait(ctx context.Context, ch <-chan string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v, nil
	case <-timer.C:
		return "", ErrSelectionTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Reaction feeds one reaction-add event. The first matching listener
// resolves; non-matching events are dropped.
func (w *Waiter) Reaction(messageID, userID, emoji string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, l := range w.reactions {
		if l.messageID == messageID && l.userID == userID && l.emojis[emoji] {
			l.ch <- emoji
			delete(w.reactions, id)
			return
		}
	}
}

// Message feeds one message-create event.
func (w *Waiter) Message(channelID, userID, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, l := range w.messages {
		if l.channelID == channelID && l.userID == userID {
			l.ch <- content
			delete(w.messages, id)
			return
		}
	}
}
