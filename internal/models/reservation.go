package models

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ReservationRecord represents one booking attempt or confirmed booking.
// A record without a ReservationID is pending: it only bridges the search
// and confirm steps and must never be administered remotely.
type ReservationRecord struct {
	ReservationID int64     `json:"reservation_id,omitempty"`
	CreatorID     string    `json:"creator_id"`
	CreatorName   string    `json:"creator_name"`
	ChannelID     string    `json:"channel_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ServerName    string    `json:"server_name"`
	Address       string    `json:"address"` // host:port
	Password      string    `json:"password"`
	RCON          string    `json:"rcon"`
}

// Confirmed reports whether the upstream service accepted the booking.
func (r *ReservationRecord) Confirmed() bool {
	return r.ReservationID != 0
}

// ActiveAt reports whether the reservation window covers the given instant.
func (r *ReservationRecord) ActiveAt(at time.Time) bool {
	return !at.Before(r.StartTime) && !at.After(r.EndTime)
}

// ExpiredAt reports whether the reservation ended more than grace ago.
// Pending records never expire by time; their own flow removes them.
func (r *ReservationRecord) ExpiredAt(at time.Time, grace time.Duration) bool {
	return r.Confirmed() && at.After(r.EndTime.Add(grace))
}

// SplitAddress splits the host:port server address.
func (r *ReservationRecord) SplitAddress() (string, int, error) {
	host, portStr, err := net.SplitHostPort(r.Address)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server address %q: %w", r.Address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server port %q: %w", portStr, err)
	}
	return host, port, nil
}
