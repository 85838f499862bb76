// Package bot implements the reservation bot: command routing, the
// reservation lifecycle, reaction-menu selection and credential-gated
// remote administration.
package bot

import (
	"context"
	"strings"

	"github.com/fishmix/servebot/internal/config"
	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/store"
)

// Message is one inbound chat message, decoupled from the transport so the
// command flows can be driven directly in tests.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string // empty in direct messages
	AuthorID    string
	AuthorName  string
	Content     string
	MentionsBot bool
}

// Bot wires the command handlers to their collaborators. Every dependency is
// injected at construction; the session store instance is shared with the
// status endpoint.
type Bot struct {
	cfg      *config.FeatureConfig
	log      *logger.Logger
	store    store.Store
	api      ReservationAPI
	console  ConsoleRunner
	msgr     Messenger
	waiter   *Waiter
	selector *Selector
	notifier *Notifier
}

func New(cfg *config.FeatureConfig, log *logger.Logger, st store.Store, api ReservationAPI, console ConsoleRunner, msgr Messenger) *Bot {
	waiter := NewWaiter()
	return &Bot{
		cfg:      cfg,
		log:      log,
		store:    st,
		api:      api,
		console:  console,
		msgr:     msgr,
		waiter:   waiter,
		selector: NewSelector(msgr, waiter),
		notifier: NewNotifier(msgr, log),
	}
}

// Notifier exposes the pending-notification registry (for shutdown).
func (b *Bot) Notifier() *Notifier { return b.notifier }

// Waiter exposes the suspension primitive so transport handlers can feed
// reaction and message events in.
func (b *Bot) Waiter() *Waiter { return b.waiter }

// Dispatch routes one inbound message. Messages sent by bots are expected to
// be filtered by the transport layer. Each invocation is independent; a
// panic in a handler is recovered and reported without taking the process
// down.
func (b *Bot) Dispatch(ctx context.Context, m Message) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Command handler panicked",
				logger.User(m.AuthorID), logger.F("PANIC", r))
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		}
	}()

	if m.MentionsBot && !strings.HasPrefix(m.Content, "!") {
		b.sendHelp(m.ChannelID)
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	fields := strings.Fields(m.Content)
	command := strings.ToLower(strings.TrimPrefix(fields[0], "!"))
	args := fields[1:]

	b.log.Info("Command received",
		logger.Command(command), logger.User(m.AuthorID), logger.Channel(m.ChannelID))

	switch command {
	case "reserve":
		b.handleReserve(ctx, m, strings.Join(args, " "))
	case "connect":
		b.handleConnect(m, args)
	case "list":
		b.handleList(m)
	case "end":
		b.handleEnd(ctx, m, args)
	case "changelevel":
		b.handleChangelevel(ctx, m, args)
	case "exec":
		b.handleExec(ctx, m, args)
	case "rcon":
		b.handleRCON(m)
	case "dispo":
		b.handleDispo(m)
	case "help":
		b.sendHelp(m.ChannelID)
	}
}

func (b *Bot) sendHelp(channelID string) {
	_, _ = b.msgr.SendEmbed(channelID, titledEmbed("📋 Aide du Bot", helpText, colorBlue))
}
