package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fishmix/servebot/internal/models"
)

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// target is an optional command argument naming either a user (mention) or a
// reservation id (bare number). User ids are Discord snowflakes and never
// arrive bare, so a bare number is always a reservation id.
type target struct {
	userID        string
	reservationID int64
}

// parseTarget interprets one argument as a target; ok is false when the
// argument is absent or is something else (e.g. a map name).
func parseTarget(arg string) (target, bool) {
	if arg == "" {
		return target{}, false
	}
	if m := mentionRe.FindStringSubmatch(arg); m != nil {
		return target{userID: m[1]}, true
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return target{reservationID: id}, true
	}
	return target{}, false
}

// splitTarget pops a leading target argument off the list, if any.
func splitTarget(args []string) (*target, []string) {
	if len(args) == 0 {
		return nil, args
	}
	if t, ok := parseTarget(args[0]); ok {
		return &t, args[1:]
	}
	return nil, args
}

// findReservation resolves which confirmed reservation an administration
// command addresses. Resolution order: explicit reservation id, explicit
// user mention, the requester's own record, and finally the single
// system-wide record as a convenience fallback. Console commands require
// the window to be currently open (requireActive); ending a reservation
// does not, so a future booking can be released early. Every dead end is
// reported to the channel; the caller just checks for nil.
func (b *Bot) findReservation(m Message, t *target, requireActive bool) *models.ReservationRecord {
	all, err := b.store.All()
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		return nil
	}
	var confirmed []*models.ReservationRecord
	for _, rec := range all {
		if rec.Confirmed() {
			confirmed = append(confirmed, rec)
		}
	}

	if len(confirmed) == 0 {
		_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur", msgNoReservation, colorRed))
		return nil
	}

	if t == nil && len(confirmed) > 1 {
		var lines []string
		for _, rec := range confirmed {
			lines = append(lines, fmt.Sprintf("ID `%d`: %s (Créateur : %s)",
				rec.ReservationID, cleanServerName(rec.ServerName), rec.CreatorName))
		}
		_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
			"Plusieurs réservations actives. Utilise `@createur` ou `<reservation_id>` en argument.\n\n**Réservations actives :**\n"+
				strings.Join(lines, "\n"), colorRed))
		return nil
	}

	var rec *models.ReservationRecord
	switch {
	case t != nil && t.reservationID != 0:
		rec, err = b.store.ByID(t.reservationID)
		if err != nil {
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
			return nil
		}
		if rec == nil {
			_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
				fmt.Sprintf("Aucune réservation avec l'ID %d. Vérifie avec `!list`.", t.reservationID), colorRed))
			return nil
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
			return nil
		}
	default:
		for _, r := range confirmed {
			if r.CreatorID == m.AuthorID {
				rec = r
				break
			}
		}
		if rec == nil && len(confirmed) == 1 {
			rec = confirmed[0]
		}
		if rec == nil {
			_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
				"Aucune réservation confirmée pour toi.", colorRed))
			return nil
		}
	}

	now := time.Now().In(b.cfg.Location())
	if requireActive && !rec.ActiveAt(now) {
		_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("Erreur",
			fmt.Sprintf("La réservation ID `%d` n'est pas active.", rec.ReservationID), colorRed))
		return nil
	}

	return rec
}
