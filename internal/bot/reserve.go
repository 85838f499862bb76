package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/models"
	"github.com/fishmix/servebot/internal/serveme"
)

// serverGroup is one menu entry in the server choice: a display prefix and
// the concrete server the group books.
type serverGroup struct {
	Label  string
	Server serveme.Server
}

// groupServers collapses the availability list into one menu entry per name
// prefix (the part before '#'), each represented by its lowest-id server.
// Labels come back sorted and capped at MaxOptions. The grouping is
// idempotent: picking a group and re-grouping its servers yields the same
// representative.
func groupServers(servers []serveme.Server) []serverGroup {
	byLabel := make(map[string]serveme.Server)
	for _, srv := range servers {
		label := srv.Name
		if i := strings.Index(label, "#"); i >= 0 {
			label = label[:i]
		}
		label = cleanServerName(label)
		if label == "" {
			continue
		}
		best, ok := byLabel[label]
		if !ok || srv.ID < best.ID {
			byLabel[label] = srv
		}
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	if len(labels) > MaxOptions {
		labels = labels[:MaxOptions]
	}

	groups := make([]serverGroup, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, serverGroup{Label: label, Server: byLabel[label]})
	}
	return groups
}

// configIDFor resolves the server config id matching the config family the
// chosen map calls for. 0 when the API does not list the file.
func configIDFor(configs []serveme.ServerConfig, file string) int64 {
	for _, cfg := range configs {
		if cfg.File == file {
			return cfg.ID
		}
	}
	return 0
}

// handleReserve runs the whole booking flow: parse the window, search
// availability, let the requester pick a server and a map, settle the RCON
// secret, confirm the booking upstream, then announce and schedule the open
// notification. Guild channels only.
func (b *Bot) handleReserve(ctx context.Context, m Message, args string) {
	if m.GuildID == "" {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGuildOnly))
		return
	}

	now := time.Now().In(b.cfg.Location())
	if b.hasActiveReservation(m.AuthorID, now) {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgAlreadyActive))
		return
	}

	w, err := ParseWindow(args, now, b.cfg.Location(), b.cfg.Duration(), b.cfg.Reservation.DefaultPassword)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(perr.Hint))
		} else {
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgInvalidFormat))
		}
		return
	}

	_, _ = b.msgr.SendText(m.ChannelID, fmt.Sprintf("Recherche de serveurs pour %s...",
		w.Start.Format("2006-01-02 15:04")))

	result, err := b.api.FindServers(ctx, w.Start, w.End)
	if err != nil {
		b.reportAPIError(m.ChannelID, "La recherche de serveurs a échoué", err)
		return
	}
	groups := groupServers(result.Servers)
	if len(groups) == 0 {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgNoServers))
		return
	}

	// A pending record marks the in-flight attempt until the upstream
	// confirms or the flow aborts.
	pending := &models.ReservationRecord{
		CreatorID:   m.AuthorID,
		CreatorName: m.AuthorName,
		ChannelID:   m.ChannelID,
		StartTime:   w.Start,
		EndTime:     w.End,
	}
	if err := b.store.Append(pending); err != nil {
		b.log.Error("Failed to record pending reservation",
			logger.User(m.AuthorID), logger.Error(err))
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGenericFail))
		return
	}
	defer func() {
		if err := b.store.RemovePending(m.AuthorID); err != nil {
			b.log.Error("Failed to clear pending reservation",
				logger.User(m.AuthorID), logger.Error(err))
		}
	}()

	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}
	idx, err := b.selector.Present(ctx, m.ChannelID, m.AuthorID, "Choisir un serveur", labels)
	if err != nil {
		return
	}
	server := groups[idx].Server

	mapIdx, err := b.selector.Present(ctx, m.ChannelID, m.AuthorID, "Choisir une carte", b.cfg.Maps.Available)
	if err != nil {
		return
	}
	firstMap := b.cfg.Maps.Available[mapIdx]
	configID := configIDFor(result.ServerConfigs, b.cfg.ConfigFileForMap(firstMap))

	rconSecret := b.cfg.Reservation.DefaultRCON
	if !w.PasswordGiven {
		rconSecret, err = b.promptRCON(ctx, m)
		if err != nil {
			return
		}
	}

	req := serveme.CreateRequest{
		StartsAt:       w.Start,
		EndsAt:         w.End,
		ServerID:       server.ID,
		Password:       w.Password,
		RCON:           rconSecret,
		FirstMap:       firstMap,
		ServerConfigID: configID,
	}
	res, status, err := b.api.CreateReservation(ctx, req)
	if err != nil {
		b.log.Error("Reservation rejected upstream",
			logger.User(m.AuthorID), logger.Server(server.Name), logger.HTTPStatus(status), logger.Error(err))
		b.reportAPIError(m.ChannelID, "La réservation a échoué", err)
		return
	}

	rec := &models.ReservationRecord{
		ReservationID: res.ID,
		CreatorID:     m.AuthorID,
		CreatorName:   m.AuthorName,
		ChannelID:     m.ChannelID,
		StartTime:     w.Start,
		EndTime:       w.End,
		ServerName:    res.Server.Name,
		Address:       res.Server.IPAndPort,
		Password:      res.Password,
		RCON:          res.RCON,
	}
	if rec.ServerName == "" {
		rec.ServerName = server.Name
	}
	if rec.Address == "" {
		rec.Address = server.IPAndPort
	}
	if rec.Password == "" {
		rec.Password = w.Password
	}
	if rec.RCON == "" {
		rec.RCON = rconSecret
	}
	if err := b.store.Append(rec); err != nil {
		b.log.Error("Failed to record confirmed reservation",
			logger.Reservation(rec.ReservationID), logger.Error(err))
	}

	b.log.Info("Reservation confirmed",
		logger.Action("reserve"), logger.Reservation(rec.ReservationID),
		logger.User(m.AuthorID), logger.Server(rec.ServerName),
		logger.StartsAt(rec.StartTime.Format(time.RFC3339)))

	b.sendRCONDM(m, rec)
	b.announceReservation(m, rec, w.Now)
}

// hasActiveReservation reports whether the user already holds a confirmed
// reservation whose grace window has not elapsed.
func (b *Bot) hasActiveReservation(userID string, now time.Time) bool {
	recs, err := b.store.ByUser(userID)
	if err != nil {
		return false
	}
	for _, rec := range recs {
		if rec.Confirmed() && !rec.ExpiredAt(now, b.cfg.Grace()) {
			return true
		}
	}
	return false
}

// promptRCON asks the requester for the RCON secret in private. The flow
// aborts on blocked DMs, timeout or an empty answer.
func (b *Bot) promptRCON(ctx context.Context, m Message) (string, error) {
	dmChannel, err := b.msgr.OpenDM(m.AuthorID)
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
		return "", ErrDMBlocked
	}
	if _, err := b.msgr.SendText(dmChannel, "Quel mot de passe RCON veux-tu pour ce serveur ?"); err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
		return "", ErrDMBlocked
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, infoEmbed("Vérifie tes DMs pour choisir le mot de passe RCON."))

	answer, err := b.waiter.AwaitMessage(ctx, dmChannel, m.AuthorID, interactionTimeout)
	if err != nil {
		if errors.Is(err, ErrSelectionTimeout) {
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgTimeout))
		}
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgInvalidRCON))
		return "", ErrAuthorizationDenied
	}
	return answer, nil
}

// sendRCONDM delivers the RCON credentials privately. A blocked DM does not
// void the reservation; the channel just gets a notice.
func (b *Bot) sendRCONDM(m Message, rec *models.ReservationRecord) {
	dmChannel, err := b.msgr.OpenDM(m.AuthorID)
	if err == nil {
		_, err = b.msgr.SendEmbed(dmChannel, rconEmbed(rec))
	}
	if err != nil {
		b.log.Error("Failed to deliver RCON credentials",
			logger.Reservation(rec.ReservationID), logger.User(m.AuthorID), logger.Error(err))
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
	}
}

// announceReservation posts the public confirmation. Immediate bookings get
// the open notice right away; future ones get it from the notifier at start
// time.
func (b *Bot) announceReservation(m Message, rec *models.ReservationRecord, immediate bool) {
	if immediate {
		_, _ = b.msgr.SendEmbed(m.ChannelID, serverOpenEmbed(rec))
		return
	}

	embed := titledEmbed("✅ Réservation confirmée",
		fmt.Sprintf("<@%s> Serveur **%s** réservé le %s (Paris).\nID `%d`. RCON envoyé en DM.",
			m.AuthorID, cleanServerName(rec.ServerName),
			rec.StartTime.Format("2006-01-02 15:04"), rec.ReservationID),
		colorGreen)
	_, _ = b.msgr.SendEmbed(m.ChannelID, embed)

	b.notifier.Schedule(rec.ReservationID, rec.StartTime, rec.ChannelID, serverOpenEmbed(rec))
}

// reportAPIError translates a booking API failure into a channel message.
func (b *Bot) reportAPIError(channelID, prefix string, err error) {
	var serr *serveme.ServiceError
	switch {
	case errors.Is(err, serveme.ErrRateLimited):
		_, _ = b.msgr.SendEmbed(channelID, errorEmbed(
			"Erreur : Trop de requêtes vers serveme.tf. Réessaie dans quelques minutes."))
	case errors.As(err, &serr):
		_, _ = b.msgr.SendEmbed(channelID, errorEmbed(
			fmt.Sprintf("%s : %s", prefix, serr.Message)))
	default:
		_, _ = b.msgr.SendEmbed(channelID, errorEmbed(msgGenericFail))
	}
}
