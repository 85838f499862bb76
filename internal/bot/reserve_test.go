package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishmix/servebot/internal/models"
	"github.com/fishmix/servebot/internal/serveme"
)

func testFindResult() *serveme.FindResult {
	return &serveme.FindResult{
		Servers: []serveme.Server{
			{ID: 5, Name: "FishHost #1", IPAndPort: "1.2.3.4:27015"},
			{ID: 3, Name: "FishHost #2", IPAndPort: "1.2.3.5:27015"},
			{ID: 7, Name: "OtherHost #9", IPAndPort: "1.2.3.6:27015"},
		},
		ServerConfigs: []serveme.ServerConfig{
			{ID: 11, File: "etf2l_6v6_5cp"},
			{ID: 12, File: "etf2l_6v6_koth"},
		},
	}
}

func TestGroupServers(t *testing.T) {
	groups := groupServers(testFindResult().Servers)

	require.Len(t, groups, 2)
	assert.Equal(t, "FishHost", groups[0].Label)
	assert.Equal(t, int64(3), groups[0].Server.ID) // lowest id represents the group
	assert.Equal(t, "OtherHost", groups[1].Label)
	assert.Equal(t, int64(7), groups[1].Server.ID)

	// Grouping the representatives again is a fixed point.
	var reps []serveme.Server
	for _, g := range groups {
		reps = append(reps, g.Server)
	}
	again := groupServers(reps)
	require.Len(t, again, 2)
	for i := range groups {
		assert.Equal(t, groups[i].Label, again[i].Label)
		assert.Equal(t, groups[i].Server.ID, again[i].Server.ID)
	}
}

func TestGroupServersCapsAtMenuSize(t *testing.T) {
	var servers []serveme.Server
	for i := 0; i < MaxOptions+5; i++ {
		servers = append(servers, serveme.Server{
			ID:   int64(i + 1),
			Name: string(rune('a'+i)) + "-host #1",
		})
	}
	assert.Len(t, groupServers(servers), MaxOptions)
}

func TestConfigIDFor(t *testing.T) {
	configs := testFindResult().ServerConfigs
	assert.Equal(t, int64(11), configIDFor(configs, "etf2l_6v6_5cp"))
	assert.Equal(t, int64(12), configIDFor(configs, "etf2l_6v6_koth"))
	assert.Equal(t, int64(0), configIDFor(configs, "missing"))
}

// pickFirst answers every selection menu with the first option.
func pickFirst(msgr *mockMessenger, waiter *Waiter, userID string, titles ...string) func() {
	return func() {
		for _, title := range titles {
			if id, ok := msgr.menuID(title); ok {
				waiter.Reaction(id, userID, "🇦")
			}
		}
	}
}

func TestHandleReserveImmediate(t *testing.T) {
	api := &mockAPI{
		findResult: testFindResult(),
		reservation: &serveme.Reservation{
			ID:       777,
			Password: "secret",
			RCON:     "fishrcon",
			Server:   serveme.Server{ID: 3, Name: "FishHost #2", IPAndPort: "1.2.3.5:27015"},
		},
	}
	b, msgr, st := newTestBot(t, api)

	done := make(chan struct{})
	defer close(done)
	go pump(done, pickFirst(msgr, b.waiter, "u1", "Choisir un serveur", "Choisir une carte"))

	b.handleReserve(context.Background(), guildMsg("u1", ""), "now secret")

	require.Len(t, api.created, 1)
	req := api.created[0]
	assert.Equal(t, int64(3), req.ServerID)
	assert.Equal(t, "secret", req.Password)
	assert.Equal(t, "fishrcon", req.RCON) // password supplied, default secret used
	assert.Equal(t, "cp_granary_pro_rc16f", req.FirstMap)
	assert.Equal(t, int64(11), req.ServerConfigID)

	recs, err := st.ByUser("u1")
	require.NoError(t, err)
	require.Len(t, recs, 1) // the pending marker is gone
	assert.Equal(t, int64(777), recs[0].ReservationID)
	assert.Equal(t, "1.2.3.5:27015", recs[0].Address)

	assert.True(t, msgr.hasEmbedContaining("Serveur ouvert"))
	assert.NotEmpty(t, msgr.embedsTo("dm-u1")) // RCON delivered in private
	assert.False(t, b.notifier.Pending(777))
}

func TestHandleReserveFuturePromptsRCONAndNotifies(t *testing.T) {
	api := &mockAPI{
		findResult: testFindResult(),
		reservation: &serveme.Reservation{
			ID:       778,
			Password: "fish",
			RCON:     "customrcon",
			Server:   serveme.Server{ID: 3, Name: "FishHost #2", IPAndPort: "1.2.3.5:27015"},
		},
	}
	b, msgr, st := newTestBot(t, api)

	tomorrow := time.Now().In(b.cfg.Location()).AddDate(0, 0, 1).Format("2006-01-02")

	done := make(chan struct{})
	defer close(done)
	go pump(done, func() {
		pickFirst(msgr, b.waiter, "u1", "Choisir un serveur", "Choisir une carte")()
		b.waiter.Message("dm-u1", "u1", "customrcon")
	})

	b.handleReserve(context.Background(), guildMsg("u1", ""), tomorrow+" 20:00")

	require.Len(t, api.created, 1)
	assert.Equal(t, "customrcon", api.created[0].RCON) // no password, secret asked in DM
	assert.Equal(t, "fish", api.created[0].Password)

	recs, err := st.ByUser("u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, b.notifier.Pending(778))
	assert.True(t, msgr.hasEmbedContaining("Réservation confirmée"))
	assert.False(t, msgr.hasEmbedContaining("Serveur ouvert"))
}

func TestHandleReserveEndBeforeStartCancelsNotification(t *testing.T) {
	api := &mockAPI{
		findResult: testFindResult(),
		reservation: &serveme.Reservation{
			ID:       779,
			Password: "secret",
			RCON:     "fishrcon",
			Server:   serveme.Server{ID: 3, Name: "FishHost #2", IPAndPort: "1.2.3.5:27015"},
		},
	}
	b, msgr, st := newTestBot(t, api)

	tomorrow := time.Now().In(b.cfg.Location()).AddDate(0, 0, 1).Format("2006-01-02")

	done := make(chan struct{})
	defer close(done)
	go pump(done, pickFirst(msgr, b.waiter, "u1", "Choisir un serveur", "Choisir une carte"))

	b.handleReserve(context.Background(), guildMsg("u1", ""), tomorrow+" 20:00 secret")
	require.True(t, b.notifier.Pending(779))

	b.handleEnd(context.Background(), guildMsg("u1", "!end"), nil)

	assert.Equal(t, []int64{779}, api.ended)
	assert.False(t, b.notifier.Pending(779))
	recs, err := st.ByUser("u1")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.False(t, msgr.hasEmbedContaining("Serveur ouvert"))
}

func TestHandleReserveNoServers(t *testing.T) {
	api := &mockAPI{findResult: &serveme.FindResult{}}
	b, msgr, st := newTestBot(t, api)

	b.handleReserve(context.Background(), guildMsg("u1", ""), "now")

	assert.True(t, msgr.hasEmbedContaining("Aucun serveur disponible"))
	recs, err := st.ByUser("u1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHandleReserveRateLimited(t *testing.T) {
	api := &mockAPI{findErr: serveme.ErrRateLimited}
	b, msgr, _ := newTestBot(t, api)

	b.handleReserve(context.Background(), guildMsg("u1", ""), "now")

	assert.True(t, msgr.hasEmbedContaining("Trop de requêtes"))
	assert.Empty(t, api.created)
}

func TestHandleReserveAlreadyActive(t *testing.T) {
	b, msgr, st := newTestBot(t, &mockAPI{})
	now := time.Now()
	require.NoError(t, st.Append(&models.ReservationRecord{
		ReservationID: 10,
		CreatorID:     "u1",
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
	}))

	b.handleReserve(context.Background(), guildMsg("u1", ""), "now")

	assert.True(t, msgr.hasEmbedContaining("déjà une réservation"))
}

func TestHandleReserveGuildOnly(t *testing.T) {
	b, msgr, _ := newTestBot(t, &mockAPI{})

	m := guildMsg("u1", "")
	m.GuildID = ""
	b.handleReserve(context.Background(), m, "now")

	assert.True(t, msgr.hasEmbedContaining("pas en DM"))
}

func TestHandleReserveBadFormat(t *testing.T) {
	b, msgr, _ := newTestBot(t, &mockAPI{})

	b.handleReserve(context.Background(), guildMsg("u1", ""), "whenever")

	assert.True(t, msgr.hasEmbedContaining("Utilise 'now'"))
}
