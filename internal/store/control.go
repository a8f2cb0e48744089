package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartfarm-backend/internal/models"
)

// controlRowID pins manual_control to a single row.
const controlRowID = 1

// GetManualControl returns the manual control state, initializing the
// default record (manual disabled, pump off) on first read.
func (s *Store) GetManualControl(ctx context.Context) (*models.ManualControl, error) {
	var ctl models.ManualControl
	query := s.db.Rebind(`SELECT manual_enabled, pump_command, timestamp FROM manual_control WHERE id = ?`)

	err := s.db.GetContext(ctx, &ctl, query, controlRowID)
	if err == nil {
		return &ctl, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query manual control: %w", err)
	}

	ctl = models.ManualControl{
		ManualEnabled: false,
		PumpCommand:   false,
		Timestamp:     time.Now().UTC(),
	}
	insert := s.db.Rebind(`INSERT INTO manual_control (id, manual_enabled, pump_command, timestamp) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, controlRowID, ctl.ManualEnabled, ctl.PumpCommand, ctl.Timestamp); err != nil {
		return nil, fmt.Errorf("initialize manual control: %w", err)
	}
	return &ctl, nil
}

func (s *Store) UpdateManualControl(ctx context.Context, upd *models.ManualControlUpdate) (*models.ManualControl, error) {
	// Ensure the row exists before updating it.
	if _, err := s.GetManualControl(ctx); err != nil {
		return nil, err
	}

	ctl := &models.ManualControl{
		ManualEnabled: upd.ManualEnabled,
		PumpCommand:   upd.PumpCommand,
		Timestamp:     time.Now().UTC(),
	}

	query := s.db.Rebind(`UPDATE manual_control SET manual_enabled = ?, pump_command = ?, timestamp = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, ctl.ManualEnabled, ctl.PumpCommand, ctl.Timestamp, controlRowID); err != nil {
		return nil, fmt.Errorf("update manual control: %w", err)
	}
	return ctl, nil
}
