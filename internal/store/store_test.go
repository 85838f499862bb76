package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishmix/servebot/internal/models"
)

func record(creatorID string, reservationID int64, end time.Time) *models.ReservationRecord {
	return &models.ReservationRecord{
		ReservationID: reservationID,
		CreatorID:     creatorID,
		CreatorName:   "name-" + creatorID,
		StartTime:     end.Add(-2 * time.Hour),
		EndTime:       end,
		ServerName:    "FishHost #7",
		Address:       "203.0.113.1:27015",
		Password:      "fish",
		RCON:          "fishrcon",
	}
}

// Both implementations must satisfy the same contract.
func stores(t *testing.T) map[string]Store {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestAppendAndByUser(t *testing.T) {
	now := time.Now()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(record("alice", 1, now)))
			require.NoError(t, s.Append(record("alice", 2, now.Add(time.Hour))))
			require.NoError(t, s.Append(record("bob", 3, now)))

			recs, err := s.ByUser("alice")
			require.NoError(t, err)
			require.Len(t, recs, 2)
			// Insertion order is preserved.
			assert.Equal(t, int64(1), recs[0].ReservationID)
			assert.Equal(t, int64(2), recs[1].ReservationID)

			all, err := s.All()
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestByID(t *testing.T) {
	now := time.Now()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(record("alice", 42, now)))
			pending := record("bob", 0, now)
			require.NoError(t, s.Append(pending))

			rec, err := s.ByID(42)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, "alice", rec.CreatorID)

			// Pending records are never addressable by id.
			rec, err = s.ByID(0)
			require.NoError(t, err)
			assert.Nil(t, rec)

			rec, err = s.ByID(99)
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestRemove(t *testing.T) {
	now := time.Now()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(record("alice", 1, now)))
			require.NoError(t, s.Append(record("alice", 2, now)))

			require.NoError(t, s.Remove("alice", 1))
			recs, err := s.ByUser("alice")
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, int64(2), recs[0].ReservationID)

			// Removing under the wrong creator is a no-op.
			require.NoError(t, s.Remove("bob", 2))
			recs, err = s.ByUser("alice")
			require.NoError(t, err)
			assert.Len(t, recs, 1)
		})
	}
}

func TestRemovePending(t *testing.T) {
	now := time.Now()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(record("alice", 0, now)))
			require.NoError(t, s.Append(record("alice", 7, now)))

			require.NoError(t, s.RemovePending("alice"))
			recs, err := s.ByUser("alice")
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.True(t, recs[0].Confirmed())
		})
	}
}

func TestSweep(t *testing.T) {
	now := time.Now()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			// Ended two hours ago: swept with a one hour grace.
			require.NoError(t, s.Append(record("alice", 1, now.Add(-2*time.Hour))))
			// Ends in one hour: kept.
			require.NoError(t, s.Append(record("bob", 2, now.Add(time.Hour))))
			// Pending: never swept by time.
			require.NoError(t, s.Append(record("carol", 0, now.Add(-48*time.Hour))))

			removed, err := s.Sweep(now.Add(-time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			all, err := s.All()
			require.NoError(t, err)
			require.Len(t, all, 2)
			for _, rec := range all {
				assert.NotEqual(t, int64(1), rec.ReservationID)
			}
		})
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creator := fmt.Sprintf("user-%d", i%4)
			for j := 0; j < 50; j++ {
				_ = s.Append(record(creator, int64(i*100+j+1), now))
				_, _ = s.ByUser(creator)
				_, _ = s.All()
				_ = s.Remove(creator, int64(i*100+j+1))
			}
		}(i)
	}
	wg.Wait()

	all, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}
