package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fishmix/servebot/internal/models"
)

// Embed colors.
const (
	colorBlue  = 0x3498db
	colorGreen = 0x2ecc71
	colorRed   = 0xe74c3c
)

// User-facing messages. The community the bot serves is francophone.
const (
	msgInvalidFormat = "Utilisez `!reserve now|<heure> [<mot de passe>]` (ex: `!reserve now`, `!reserve 20:00 mypassword`) ou `!reserve <date> <heure> [<mot de passe>]` (ex: `!reserve 2025-05-05 20:00`). Heure au format HH:MM ou HHhMM."
	msgAlreadyActive = "Erreur : Tu as déjà une réservation active. Termine-la avec `!end`."
	msgNoServers     = "Erreur : Aucun serveur disponible."
	msgInvalidDate   = "Erreur : Utilise YYYY-MM-DD, ex: `2025-05-05`."
	msgInvalidTime   = "Erreur : Utilise 'now', HHhMM ou HH:MM, ex: `20h00` ou `20:00`."
	msgDateTooFar    = "Erreur : La date est trop éloignée (max 1 an)."
	msgDMBlocked     = "Erreur : DMs bloqués. Ouvre tes DMs pour recevoir le RCON."
	msgTimeout       = "Erreur : Temps écoulé pour répondre."
	msgNoReservation = "Erreur : Aucune réservation active."
	msgInvalidRCON   = "Erreur : RCON incorrect ou impossible de recevoir le RCON."
	msgGuildOnly     = "Erreur : Cette commande ne peut être utilisée que dans un serveur, pas en DM."
	msgGenericFail   = "Erreur : Une erreur inattendue s'est produite."
)

const helpText = "📖 **Aide du Bot de Réservation**\n\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"🔹 **Commandes de Réservation**\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"🖥️ `!reserve now | <heure> | [<date> <heure>] [<mot de passe>]`\n" +
	" ↪ Réserve un serveur pour 2h\n" +
	"  Exemples : `!reserve now`, `!reserve 2025-05-05 20:00`\n\n" +
	"🔗 `!connect [<@user> | <ID>]`\n" +
	" ↪ Affiche les infos de connexion\n" +
	"  Exemples : `!connect`, `!connect 12345`\n\n" +
	"📋 `!list`\n" +
	" ↪ Liste les réservations actives\n\n" +
	"🛑 `!end [<@user> | <ID>]`\n" +
	" ↪ Termine une réservation\n" +
	"  Exemples : `!end`, `!end 12345`\n\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"🔹 **Commandes Serveur**\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"🔄 `!changelevel [<@user> | <ID>] [<map>]`\n" +
	" ↪ Change la map actuelle\n" +
	"  Exemples : `!changelevel`, `!changelevel @user cp_process_f12`\n\n" +
	"⚙️ `!exec [<@user> | <ID>] [<config>]`\n" +
	" ↪ Lance une configuration serveur\n" +
	"  Exemples : `!exec`, `!exec @user etf2l_6v6_5cp`\n\n" +
	"🔐 `!rcon`\n" +
	" ↪ Envoie le mot de passe RCON en DM\n\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"🔹 **Utilitaires**\n" +
	"━━━━━━━━━━━━━━━━━━\n" +
	"📅 `!dispo`\n" +
	" ↪ Indique tes disponibilités pour la semaine\n\n" +
	"❓ `!help`\n" +
	" ↪ Affiche ce message d'aide\n"

func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: description, Color: colorRed}
}

func infoEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: description, Color: colorBlue}
}

func titledEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
}

// cleanServerName normalizes a server display name.
func cleanServerName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func connectLine(rec *models.ReservationRecord) string {
	return fmt.Sprintf("```\nconnect %s; password \"%s\"\n```", rec.Address, rec.Password)
}

func rconEmbed(rec *models.ReservationRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("RCON pour %s", cleanServerName(rec.ServerName)),
		Description: fmt.Sprintf("```\nrcon_address %s; rcon_password \"%s\"\n```", rec.Address, rec.RCON),
		Color:       colorBlue,
	}
}

func serverOpenEmbed(rec *models.ReservationRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔔 Serveur ouvert",
		Description: fmt.Sprintf(
			"**Serveur :** %s\n**Connect info :**\n%s\nOuvert à %s (Paris)",
			cleanServerName(rec.ServerName),
			connectLine(rec),
			rec.StartTime.Format("2006-01-02 15:04"),
		),
		Color: colorGreen,
	}
}
