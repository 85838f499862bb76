package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fishmix/servebot/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is an opt-in durable session store. The bot runs with the
// in-memory store unless DB_PATH is set.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dbPath, err := resolveDBPath(path)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func resolveDBPath(path string) (string, error) {
	abs := filepath.Clean(path)
	if strings.HasSuffix(abs, ".db") {
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return "", err
		}
		return abs, nil
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", err
	}
	return filepath.Join(abs, "servebot.db"), nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"CREATE TABLE IF NOT EXISTS reservations (seq INTEGER PRIMARY KEY AUTOINCREMENT, reservation_id INTEGER NOT NULL, creator_id TEXT NOT NULL, end_time TEXT NOT NULL, data BLOB NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_reservations_creator ON reservations(creator_id, seq);",
		"CREATE INDEX IF NOT EXISTS idx_reservations_id ON reservations(reservation_id);",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(rec *models.ReservationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	end := rec.EndTime.UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(`INSERT INTO reservations (reservation_id, creator_id, end_time, data) VALUES (?, ?, ?, ?)`,
		rec.ReservationID, rec.CreatorID, end, data)
	return err
}

func (s *SQLiteStore) Remove(creatorID string, reservationID int64) error {
	_, err := s.db.Exec(`DELETE FROM reservations WHERE creator_id = ? AND reservation_id = ?`, creatorID, reservationID)
	return err
}

func (s *SQLiteStore) RemovePending(creatorID string) error {
	_, err := s.db.Exec(`DELETE FROM reservations WHERE creator_id = ? AND reservation_id = 0`, creatorID)
	return err
}

func (s *SQLiteStore) ByUser(creatorID string) ([]*models.ReservationRecord, error) {
	return s.query(`SELECT data FROM reservations WHERE creator_id = ? ORDER BY seq`, creatorID)
}

func (s *SQLiteStore) ByID(reservationID int64) (*models.ReservationRecord, error) {
	if reservationID == 0 {
		return nil, nil
	}
	var raw []byte
	err := s.db.QueryRow(`SELECT data FROM reservations WHERE reservation_id = ? LIMIT 1`, reservationID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec models.ReservationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStore) All() ([]*models.ReservationRecord, error) {
	return s.query(`SELECT data FROM reservations ORDER BY seq`)
}

func (s *SQLiteStore) Sweep(cutoff time.Time) (int, error) {
	instant := cutoff.UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(`DELETE FROM reservations WHERE reservation_id != 0 AND end_time < ?`, instant)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) query(q string, args ...any) ([]*models.ReservationRecord, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var recs []*models.ReservationRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec models.ReservationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
