package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// sessionMessenger adapts a live discordgo session to the Messenger
// interface the command flows depend on.
type sessionMessenger struct {
	session *discordgo.Session
}

// NewSessionMessenger wraps a discordgo session.
func NewSessionMessenger(session *discordgo.Session) Messenger {
	return &sessionMessenger{session: session}
}

func (s *sessionMessenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	msg, err := s.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (s *sessionMessenger) SendText(channelID, content string) (string, error) {
	msg, err := s.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (s *sessionMessenger) AddReaction(channelID, messageID, emoji string) error {
	return s.session.MessageReactionAdd(channelID, messageID, emoji)
}

func (s *sessionMessenger) OpenDM(userID string) (string, error) {
	ch, err := s.session.UserChannelCreate(userID)
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

// Attach registers the gateway handlers: messages route through Dispatch
// (and feed waiting private prompts), reaction adds feed waiting menus.
func (b *Bot) Attach(ctx context.Context, session *discordgo.Session) {
	session.AddHandler(func(s *discordgo.Session, e *discordgo.MessageCreate) {
		if e.Author == nil || e.Author.Bot {
			return
		}

		// Resolve pending private prompts first; a DM answer is not a
		// command.
		b.waiter.Message(e.ChannelID, e.Author.ID, e.Content)

		mentionsBot := false
		for _, u := range e.Mentions {
			if s.State != nil && s.State.User != nil && u.ID == s.State.User.ID {
				mentionsBot = true
				break
			}
		}

		go b.Dispatch(ctx, Message{
			ID:          e.ID,
			ChannelID:   e.ChannelID,
			GuildID:     e.GuildID,
			AuthorID:    e.Author.ID,
			AuthorName:  e.Author.Username,
			Content:     e.Content,
			MentionsBot: mentionsBot,
		})
	})

	session.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
		if s.State != nil && s.State.User != nil && e.UserID == s.State.User.ID {
			return
		}
		b.waiter.Reaction(e.MessageID, e.UserID, e.Emoji.Name)
	})
}
