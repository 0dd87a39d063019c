// Package sqlite provides a single-file SQLite store for accounts and save
// slots, used when no PostgreSQL server is configured.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/apprentice/internal/game/progress"
	"github.com/cory-johannsen/apprentice/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists accounts and save slots in one SQLite database.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens (creating if needed) the database at path and applies the schema.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new account with a bcrypt-hashed password.
//
// Postcondition: Returns the created Account, an error from
// storage.ValidateCredentials, or storage.ErrAccountExists.
func (s *Store) Create(ctx context.Context, username, password string) (storage.Account, error) {
	if err := storage.ValidateCredentials(username, password); err != nil {
		return storage.Account{}, err
	}
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Account{}, err
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, hash, toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Account{}, storage.ErrAccountExists
		}
		return storage.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.Account{}, fmt.Errorf("reading account id: %w", err)
	}
	return storage.Account{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    fromMillis(toMillis(now)),
	}, nil
}

// Authenticate verifies credentials and returns the matching account.
//
// Postcondition: Returns the Account, storage.ErrAccountNotFound, or
// storage.ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	acct, err := s.GetByUsername(ctx, username)
	if err != nil {
		return storage.Account{}, err
	}
	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}
	return acct, nil
}

// GetByUsername retrieves an account by username.
//
// Postcondition: Returns the Account or storage.ErrAccountNotFound.
func (s *Store) GetByUsername(ctx context.Context, username string) (storage.Account, error) {
	var (
		acct    storage.Account
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("querying account: %w", err)
	}
	acct.CreatedAt = fromMillis(created)
	return acct, nil
}

// Save inserts or replaces a save slot.
//
// Precondition: slot.SlotNumber must be in [progress.MinSlot, progress.MaxSlot].
// Postcondition: Returns the stored slot with UpdatedAt set.
func (s *Store) Save(ctx context.Context, slot progress.Slot) (progress.Slot, error) {
	if err := progress.ValidateSlot(slot.SlotNumber); err != nil {
		return progress.Slot{}, err
	}
	stats, err := json.Marshal(slot.PlayerStats)
	if err != nil {
		return progress.Slot{}, fmt.Errorf("encoding player stats: %w", err)
	}
	prog, err := json.Marshal(slot.Progress)
	if err != nil {
		return progress.Slot{}, fmt.Errorf("encoding progress: %w", err)
	}
	updated := toMillis(time.Now())

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO save_slots (user_id, slot_number, player_stats, progress, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, slot_number) DO UPDATE
		 SET player_stats = excluded.player_stats,
		     progress     = excluded.progress,
		     updated_at   = excluded.updated_at`,
		slot.UserID, slot.SlotNumber, string(stats), string(prog), updated,
	)
	if err != nil {
		return progress.Slot{}, fmt.Errorf("saving slot %d for user %d: %w", slot.SlotNumber, slot.UserID, err)
	}
	out := slot
	out.UpdatedAt = fromMillis(updated)
	return out, nil
}

// Load retrieves one save slot.
//
// Postcondition: Returns the slot or progress.ErrSlotNotFound.
func (s *Store) Load(ctx context.Context, userID int64, slotNumber int) (progress.Slot, error) {
	if err := progress.ValidateSlot(slotNumber); err != nil {
		return progress.Slot{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT slot_number, player_stats, progress, updated_at
		 FROM save_slots WHERE user_id = ? AND slot_number = ?`,
		userID, slotNumber,
	)
	slot, err := scanSlot(userID, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.Slot{}, progress.ErrSlotNotFound
		}
		return progress.Slot{}, fmt.Errorf("loading slot %d for user %d: %w", slotNumber, userID, err)
	}
	return slot, nil
}

// List returns every slot the user has written, ordered by slot number.
func (s *Store) List(ctx context.Context, userID int64) ([]progress.Slot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot_number, player_stats, progress, updated_at
		 FROM save_slots WHERE user_id = ?
		 ORDER BY slot_number`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing slots for user %d: %w", userID, err)
	}
	defer rows.Close()

	slots := []progress.Slot{}
	for rows.Next() {
		slot, err := scanSlot(userID, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}
	return slots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(userID int64, row scanner) (progress.Slot, error) {
	var (
		slot         = progress.Slot{UserID: userID}
		stats, prog  string
		updatedMilli int64
	)
	if err := row.Scan(&slot.SlotNumber, &stats, &prog, &updatedMilli); err != nil {
		return progress.Slot{}, err
	}
	if err := json.Unmarshal([]byte(stats), &slot.PlayerStats); err != nil {
		return progress.Slot{}, fmt.Errorf("decoding player stats: %w", err)
	}
	if err := json.Unmarshal([]byte(prog), &slot.Progress); err != nil {
		return progress.Slot{}, fmt.Errorf("decoding progress: %w", err)
	}
	slot.UpdatedAt = fromMillis(updatedMilli)
	return slot, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ progress.SaveSlotStore = (*Store)(nil)
