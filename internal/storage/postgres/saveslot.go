package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/apprentice/internal/game/progress"
)

// SaveSlotRepository persists save slots as JSONB rows keyed by
// (user_id, slot_number).
type SaveSlotRepository struct {
	db *pgxpool.Pool
}

// NewSaveSlotRepository creates a SaveSlotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveSlotRepository(db *pgxpool.Pool) *SaveSlotRepository {
	return &SaveSlotRepository{db: db}
}

// Save inserts or replaces a slot.
//
// Precondition: slot.SlotNumber must be in [progress.MinSlot, progress.MaxSlot].
// Postcondition: Returns the stored slot with UpdatedAt set by the database.
func (r *SaveSlotRepository) Save(ctx context.Context, slot progress.Slot) (progress.Slot, error) {
	if err := progress.ValidateSlot(slot.SlotNumber); err != nil {
		return progress.Slot{}, err
	}

	out := slot
	err := r.db.QueryRow(ctx,
		`INSERT INTO save_slots (user_id, slot_number, player_stats, progress)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, slot_number) DO UPDATE
		 SET player_stats = EXCLUDED.player_stats,
		     progress     = EXCLUDED.progress,
		     updated_at   = NOW()
		 RETURNING updated_at`,
		slot.UserID, slot.SlotNumber, slot.PlayerStats, slot.Progress,
	).Scan(&out.UpdatedAt)
	if err != nil {
		return progress.Slot{}, fmt.Errorf("saving slot %d for user %d: %w", slot.SlotNumber, slot.UserID, err)
	}
	return out, nil
}

// Load retrieves one slot.
//
// Postcondition: Returns the slot or progress.ErrSlotNotFound.
func (r *SaveSlotRepository) Load(ctx context.Context, userID int64, slotNumber int) (progress.Slot, error) {
	if err := progress.ValidateSlot(slotNumber); err != nil {
		return progress.Slot{}, err
	}

	slot := progress.Slot{UserID: userID, SlotNumber: slotNumber}
	err := r.db.QueryRow(ctx,
		`SELECT player_stats, progress, updated_at
		 FROM save_slots WHERE user_id = $1 AND slot_number = $2`,
		userID, slotNumber,
	).Scan(&slot.PlayerStats, &slot.Progress, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return progress.Slot{}, progress.ErrSlotNotFound
		}
		return progress.Slot{}, fmt.Errorf("loading slot %d for user %d: %w", slotNumber, userID, err)
	}
	return slot, nil
}

// List returns every slot the user has written, ordered by slot number.
//
// Postcondition: Returns an empty slice (not an error) when the user has no saves.
func (r *SaveSlotRepository) List(ctx context.Context, userID int64) ([]progress.Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot_number, player_stats, progress, updated_at
		 FROM save_slots WHERE user_id = $1
		 ORDER BY slot_number`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing slots for user %d: %w", userID, err)
	}
	defer rows.Close()

	slots := []progress.Slot{}
	for rows.Next() {
		s := progress.Slot{UserID: userID}
		if err := rows.Scan(&s.SlotNumber, &s.PlayerStats, &s.Progress, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}
	return slots, nil
}
