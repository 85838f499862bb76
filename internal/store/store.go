package store

import (
	"time"

	"github.com/fishmix/servebot/internal/models"
)

// Store is the process-wide session store: user identity mapped to that
// user's reservation records in insertion order. It is shared by every
// command invocation, so each operation must be an atomic step.
type Store interface {
	// Append adds a record to its creator's session.
	Append(rec *models.ReservationRecord) error
	// Remove deletes a confirmed record by creator and reservation id.
	Remove(creatorID string, reservationID int64) error
	// RemovePending deletes the creator's pending (unconfirmed) records.
	RemovePending(creatorID string) error
	// ByUser returns the creator's records in insertion order.
	ByUser(creatorID string) ([]*models.ReservationRecord, error)
	// ByID returns the confirmed record with the given reservation id.
	ByID(reservationID int64) (*models.ReservationRecord, error)
	// All returns every record across all users.
	All() ([]*models.ReservationRecord, error)
	// Sweep removes confirmed records whose end time is before the cutoff
	// and reports how many were removed.
	Sweep(cutoff time.Time) (int, error)

	Close() error
}
