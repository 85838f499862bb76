package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// The fixed ordered label set for reaction menus. Its size caps how many
// options one menu can show.
var selectionEmojis = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯"}

// MaxOptions is the most options a single selection menu can carry.
const MaxOptions = 10

const interactionTimeout = 60 * time.Second

// Selector presents labeled options as reactions on one message and waits
// for the requester's first matching reaction.
type Selector struct {
	msgr    Messenger
	waiter  *Waiter
	timeout time.Duration
}

func NewSelector(msgr Messenger, waiter *Waiter) *Selector {
	return &Selector{msgr: msgr, waiter: waiter, timeout: interactionTimeout}
}

// Present shows the options to userID in channelID and returns the index of
// the chosen one. Options beyond the label set are truncated. On timeout the
// requester is notified here and ErrSelectionTimeout is returned; callers
// abort silently.
func (s *Selector) Present(ctx context.Context, channelID, userID, title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to present")
	}
	if len(options) > len(selectionEmojis) {
		options = options[:len(selectionEmojis)]
	}
	emojis := selectionEmojis[:len(options)]

	var lines []string
	for i, opt := range options {
		lines = append(lines, fmt.Sprintf("%s %s", emojis[i], opt))
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       colorBlue,
	}
	messageID, err := s.msgr.SendEmbed(channelID, embed)
	if err != nil {
		_, _ = s.msgr.SendText(channelID, msgGenericFail)
		return 0, fmt.Errorf("sending selection menu: %w", err)
	}
	for _, emoji := range emojis {
		if err := s.msgr.AddReaction(channelID, messageID, emoji); err != nil {
			_, _ = s.msgr.SendEmbed(channelID, errorEmbed(msgGenericFail))
			return 0, fmt.Errorf("seeding selection reactions: %w", err)
		}
	}

	emoji, err := s.waiter.AwaitReaction(ctx, messageID, userID, emojis, s.timeout)
	if err != nil {
		if errors.Is(err, ErrSelectionTimeout) {
			_, _ = s.msgr.SendEmbed(channelID, errorEmbed(msgTimeout))
		}
		return 0, err
	}

	for i, e := range emojis {
		if e == emoji {
			return i, nil
		}
	}
	return 0, fmt.Errorf("reaction %q not in label set", emoji)
}
