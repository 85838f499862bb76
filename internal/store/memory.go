package store

import (
	"sync"
	"time"

	"github.com/fishmix/servebot/internal/models"
)

// MemoryStore keeps all sessions in process memory. This is the default
// store: reservations do not need to outlive the process.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]*models.ReservationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]*models.ReservationRecord),
	}
}

func (s *MemoryStore) Append(rec *models.ReservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.CreatorID] = append(s.sessions[rec.CreatorID], rec)
	return nil
}

func (s *MemoryStore) Remove(creatorID string, reservationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[creatorID][:0]
	for _, rec := range s.sessions[creatorID] {
		if rec.ReservationID != reservationID {
			kept = append(kept, rec)
		}
	}
	s.setLocked(creatorID, kept)
	return nil
}

func (s *MemoryStore) RemovePending(creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[creatorID][:0]
	for _, rec := range s.sessions[creatorID] {
		if rec.Confirmed() {
			kept = append(kept, rec)
		}
	}
	s.setLocked(creatorID, kept)
	return nil
}

func (s *MemoryStore) ByUser(creatorID string) ([]*models.ReservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.sessions[creatorID]
	out := make([]*models.ReservationRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) ByID(reservationID int64) (*models.ReservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, recs := range s.sessions {
		for _, rec := range recs {
			if rec.Confirmed() && rec.ReservationID == reservationID {
				return rec, nil
			}
		}
	}
	return nil, nil
}

func (s *MemoryStore) All() ([]*models.ReservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ReservationRecord
	for _, recs := range s.sessions {
		out = append(out, recs...)
	}
	return out, nil
}

func (s *MemoryStore) Sweep(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for creatorID, recs := range s.sessions {
		kept := recs[:0]
		for _, rec := range recs {
			if rec.Confirmed() && rec.EndTime.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		s.setLocked(creatorID, kept)
	}
	return removed, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// setLocked stores the filtered slice, dropping empty sessions entirely.
func (s *MemoryStore) setLocked(creatorID string, recs []*models.ReservationRecord) {
	if len(recs) == 0 {
		delete(s.sessions, creatorID)
		return
	}
	s.sessions[creatorID] = recs
}
