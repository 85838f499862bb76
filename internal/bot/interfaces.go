package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fishmix/servebot/internal/serveme"
)

// ReservationAPI abstracts the booking service for testability.
type ReservationAPI interface {
	FindServers(ctx context.Context, start, end time.Time) (*serveme.FindResult, error)
	CreateReservation(ctx context.Context, req serveme.CreateRequest) (*serveme.Reservation, int, error)
	EndReservation(ctx context.Context, id int64) (string, int, error)
}

// ConsoleRunner abstracts the remote console for testability.
type ConsoleRunner interface {
	Run(ctx context.Context, addr, password, command string, args ...string) (string, error)
}

// Messenger abstracts outbound chat operations for testability. The real
// implementation wraps a discordgo session.
type Messenger interface {
	// SendEmbed posts an embed and returns the new message id.
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error)
	// SendText posts a plain message and returns the new message id.
	SendText(channelID, content string) (string, error)
	// AddReaction attaches an emoji to a message.
	AddReaction(channelID, messageID, emoji string) error
	// OpenDM returns the private channel id for a user, creating it if
	// needed. Fails if the user blocks direct messages.
	OpenDM(userID string) (string, error)
}
