package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/models"
)

// handleConnect shows connection info for a reservation: the requester's
// own by default, or the one named by mention or id.
func (b *Bot) handleConnect(m Message, args []string) {
	all, err := b.store.All()
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		return
	}
	var confirmed []*models.ReservationRecord
	for _, rec := range all {
		if rec.Confirmed() {
			confirmed = append(confirmed, rec)
		}
	}
	if len(confirmed) == 0 {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgNoReservation))
		return
	}

	t, _ := splitTarget(args)
	var rec *models.ReservationRecord
	switch {
	case t != nil && t.reservationID != 0:
		for _, r := range confirmed {
			if r.ReservationID == t.reservationID {
				rec = r
				break
			}
		}
		if rec == nil {
			_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
				fmt.Sprintf("Aucune réservation avec l'ID %d. Vérifie avec `!list`.", t.reservationID), colorRed))
			return
		}
	case t != nil && t.userID != "":
		for _, r := range confirmed {
			if r.CreatorID == t.userID {
				rec = r
				break
			}
		}
		if rec == nil {
			_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
				fmt.Sprintf("Aucune réservation active pour <@%s>.", t.userID), colorRed))
			return
		}
	default:
		for _, r := range confirmed {
			if r.CreatorID == m.AuthorID {
				rec = r
				break
			}
		}
		// Convenience fallback: show the most recent booking.
		if rec == nil {
			rec = confirmed[len(confirmed)-1]
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔗 Connexion : %s", cleanServerName(rec.ServerName)),
		Description: connectLine(rec),
		Color:       colorBlue,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("ID %d | Créateur : %s | Début : %s (Paris)",
				rec.ReservationID, rec.CreatorName, rec.StartTime.Format("2006-01-02 15:04")),
		},
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, embed)
}

// handleList shows every live reservation: confirmed ones still inside
// their grace window, plus in-flight pending attempts.
func (b *Bot) handleList(m Message) {
	all, err := b.store.All()
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		return
	}

	now := time.Now().In(b.cfg.Location())
	var lines []string
	for _, rec := range all {
		if !rec.Confirmed() {
			lines = append(lines, fmt.Sprintf("⏳ %s : En attente de confirmation...", rec.CreatorName))
			continue
		}
		if rec.ExpiredAt(now, b.cfg.Grace()) {
			continue
		}
		lines = append(lines, fmt.Sprintf("ID `%d` : **%s** par %s, %s → %s (Paris)",
			rec.ReservationID, cleanServerName(rec.ServerName), rec.CreatorName,
			rec.StartTime.Format("2006-01-02 15:04"), rec.EndTime.Format("15:04")))
	}

	if len(lines) == 0 {
		_, _ = b.msgr.SendEmbed(m.ChannelID, infoEmbed("Aucune réservation active."))
		return
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("📋 Réservations actives",
		strings.Join(lines, "\n")+"\n\nUtilise `!end <reservation_id>` pour terminer une réservation.",
		colorBlue))
}

// handleRCON re-sends the requester's own RCON credentials in private.
func (b *Bot) handleRCON(m Message) {
	recs, err := b.store.ByUser(m.AuthorID)
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		return
	}
	var rec *models.ReservationRecord
	for _, r := range recs {
		if r.Confirmed() {
			rec = r
			break
		}
	}
	if rec == nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgNoReservation))
		return
	}

	dmChannel, err := b.msgr.OpenDM(m.AuthorID)
	if err == nil {
		_, err = b.msgr.SendEmbed(dmChannel, rconEmbed(rec))
	}
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
		return
	}
	b.log.Info("RCON credentials re-sent",
		logger.Action("rcon"), logger.Reservation(rec.ReservationID), logger.User(m.AuthorID))
	_, _ = b.msgr.SendEmbed(m.ChannelID, infoEmbed("RCON envoyé en DM."))
}

var weekdays = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

var availabilityEmojis = []string{"✅", "☑️", "❌", "🐟"}

// handleDispo posts the weekly availability poll: one message per day,
// pre-seeded with the availability reactions.
func (b *Bot) handleDispo(m Message) {
	_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("📅 Disponibilités de la semaine",
		"Réagis sur chaque jour :\n✅ dispo 20h\n☑️ dispo 21h\n❌ pas dispo\n🐟 Sub",
		colorBlue))

	for _, day := range weekdays {
		messageID, err := b.msgr.SendEmbed(m.ChannelID,
			&discordgo.MessageEmbed{Title: day, Color: colorBlue})
		if err != nil {
			b.log.Error("Failed to post availability day",
				logger.Channel(m.ChannelID), logger.Error(err))
			return
		}
		for _, emoji := range availabilityEmojis {
			if err := b.msgr.AddReaction(m.ChannelID, messageID, emoji); err != nil {
				b.log.Error("Failed to seed availability reaction",
					logger.Channel(m.ChannelID), logger.Error(err))
			}
		}
	}
}
