package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fishmix/servebot/internal/console"
	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/models"
)

const consoleResponseLimit = 1000

// verifyRCON gates a console command issued by someone other than the
// reservation creator: the requester must repeat the exact RCON secret in
// private before the command runs.
func (b *Bot) verifyRCON(ctx context.Context, m Message, rec *models.ReservationRecord) error {
	dmChannel, err := b.msgr.OpenDM(m.AuthorID)
	if err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
		return ErrDMBlocked
	}
	if _, err := b.msgr.SendText(dmChannel,
		fmt.Sprintf("Quel est le mot de passe RCON de la réservation ID %d ?", rec.ReservationID)); err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgDMBlocked))
		return ErrDMBlocked
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, infoEmbed("Vérifie tes DMs pour confirmer le RCON."))

	answer, err := b.waiter.AwaitMessage(ctx, dmChannel, m.AuthorID, interactionTimeout)
	if err != nil {
		if errors.Is(err, ErrSelectionTimeout) {
			_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgTimeout))
		}
		return err
	}
	if strings.TrimSpace(answer) != rec.RCON {
		b.log.Warn("RCON confirmation rejected",
			logger.Reservation(rec.ReservationID), logger.User(m.AuthorID))
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgInvalidRCON))
		return ErrAuthorizationDenied
	}
	return nil
}

// authorizeConsole applies the creator-bypass rule: the creator runs console
// commands directly, anyone else passes the RCON confirmation first.
func (b *Bot) authorizeConsole(ctx context.Context, m Message, rec *models.ReservationRecord) bool {
	if rec.CreatorID == m.AuthorID {
		return true
	}
	return b.verifyRCON(ctx, m, rec) == nil
}

// runConsole executes one command on the reservation's server and returns
// the trimmed console response.
func (b *Bot) runConsole(ctx context.Context, m Message, rec *models.ReservationRecord, command string, args ...string) (string, bool) {
	if _, _, err := rec.SplitAddress(); err != nil {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed("Erreur : Informations RCON invalides."))
		return "", false
	}

	resp, err := b.console.Run(ctx, rec.Address, rec.RCON, command, args...)
	if err != nil {
		b.log.Error("Console command failed",
			logger.Reservation(rec.ReservationID), logger.Command(command), logger.Error(err))
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(
			fmt.Sprintf("Erreur : La commande `%s` a échoué sur le serveur.", command)))
		return "", false
	}

	b.log.Info("Console command executed",
		logger.Action("console"), logger.Reservation(rec.ReservationID),
		logger.Command(command), logger.User(m.AuthorID))
	return console.Truncate(strings.TrimSpace(resp), consoleResponseLimit), true
}

// handleChangelevel switches the running map, prompting with the map menu
// when none is given.
func (b *Bot) handleChangelevel(ctx context.Context, m Message, args []string) {
	if m.GuildID == "" {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGuildOnly))
		return
	}
	t, rest := splitTarget(args)
	rec := b.findReservation(m, t, true)
	if rec == nil {
		return
	}
	if !b.authorizeConsole(ctx, m, rec) {
		return
	}

	var mapName string
	if len(rest) > 0 {
		mapName = rest[0]
	} else {
		idx, err := b.selector.Present(ctx, m.ChannelID, m.AuthorID,
			"Choisir une nouvelle carte", b.cfg.Maps.Available)
		if err != nil {
			return
		}
		mapName = b.cfg.Maps.Available[idx]
	}

	resp, ok := b.runConsole(ctx, m, rec, "changelevel", mapName)
	if !ok {
		return
	}
	desc := fmt.Sprintf("Le serveur **%s** passe sur `%s`.", cleanServerName(rec.ServerName), mapName)
	if resp != "" {
		desc += fmt.Sprintf("\nRéponse du serveur : `%s`", resp)
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("✅ Map changée", desc, colorGreen))
}

// handleExec runs a server-side config file, prompting with the config menu
// when none is given.
func (b *Bot) handleExec(ctx context.Context, m Message, args []string) {
	if m.GuildID == "" {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGuildOnly))
		return
	}
	t, rest := splitTarget(args)
	rec := b.findReservation(m, t, true)
	if rec == nil {
		return
	}
	if !b.authorizeConsole(ctx, m, rec) {
		return
	}

	var configName string
	if len(rest) > 0 {
		configName = rest[0]
	} else {
		options := []string{b.cfg.Maps.Config5CP, b.cfg.Maps.ConfigKOTH}
		idx, err := b.selector.Present(ctx, m.ChannelID, m.AuthorID,
			"Choisir une configuration", options)
		if err != nil {
			return
		}
		configName = options[idx]
	}

	resp, ok := b.runConsole(ctx, m, rec, "exec", configName)
	if !ok {
		return
	}
	desc := fmt.Sprintf("`%s` exécutée sur **%s**.", configName, cleanServerName(rec.ServerName))
	if resp != "" {
		desc += fmt.Sprintf("\n```\n%s\n```", resp)
	}
	_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("✅ Configuration exécutée", desc, colorGreen))
}

// handleEnd releases a reservation upstream and drops its record. Ending in
// advance of the start time cancels the pending open notification.
func (b *Bot) handleEnd(ctx context.Context, m Message, args []string) {
	if m.GuildID == "" {
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(msgGuildOnly))
		return
	}
	t, _ := splitTarget(args)
	rec := b.findReservation(m, t, false)
	if rec == nil {
		return
	}
	if rec.CreatorID != m.AuthorID {
		if err := b.verifyRCON(ctx, m, rec); err != nil {
			return
		}
	}

	body, status, err := b.api.EndReservation(ctx, rec.ReservationID)
	if err != nil {
		b.log.Error("Failed to end reservation upstream",
			logger.Reservation(rec.ReservationID), logger.HTTPStatus(status), logger.Error(err))
		msg := strings.TrimSpace(body)
		if msg == "" {
			msg = err.Error()
		}
		_, _ = b.msgr.SendEmbed(m.ChannelID, errorEmbed(
			fmt.Sprintf("Échec de la terminaison : %s", console.Truncate(msg, 200))))
		return
	}

	b.notifier.Cancel(rec.ReservationID)
	if err := b.store.Remove(rec.CreatorID, rec.ReservationID); err != nil {
		b.log.Error("Failed to drop ended reservation",
			logger.Reservation(rec.ReservationID), logger.Error(err))
	}

	b.log.Info("Reservation ended",
		logger.Action("end"), logger.Reservation(rec.ReservationID), logger.User(m.AuthorID))
	_, _ = b.msgr.SendEmbed(m.ChannelID, titledEmbed("✅ Réservation terminée",
		fmt.Sprintf("La réservation ID `%d` (%s) est terminée.",
			rec.ReservationID, cleanServerName(rec.ServerName)),
		colorGreen))
}
