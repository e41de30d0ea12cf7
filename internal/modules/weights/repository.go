package weights

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stavrosk/weltfolio/internal/modules/catalog"
)

// Weight group names persisted in the overrides table.
const (
	GroupEquity  = "equity"
	GroupReserve = "reserve"
)

// Overrides holds the persisted weight overrides for both groups. A nil map
// means no override is stored for that group and the catalog default applies.
type Overrides struct {
	Equity  map[catalog.Key]float64 `json:"equity_weights,omitempty"`
	Reserve map[catalog.Key]float64 `json:"reserve_weights,omitempty"`
}

// HasAny reports whether at least one group is overridden.
func (o Overrides) HasAny() bool {
	return o.Equity != nil || o.Reserve != nil
}

// Repository persists weight overrides in SQLite. Writes are
// last-write-wins per group.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new weight override repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "weights").Logger(),
	}
}

// Get loads the stored overrides. Groups without a stored row come back nil.
func (r *Repository) Get() (Overrides, error) {
	var out Overrides

	equity, err := r.getGroup(GroupEquity)
	if err != nil {
		return out, err
	}
	reserve, err := r.getGroup(GroupReserve)
	if err != nil {
		return out, err
	}

	out.Equity = equity
	out.Reserve = reserve
	return out, nil
}

// SaveEquity upserts the equity group override.
func (r *Repository) SaveEquity(weights map[catalog.Key]float64) error {
	return r.saveGroup(GroupEquity, weights)
}

// SaveReserve upserts the reserve group override.
func (r *Repository) SaveReserve(weights map[catalog.Key]float64) error {
	return r.saveGroup(GroupReserve, weights)
}

// Delete removes all stored overrides, restoring catalog defaults.
func (r *Repository) Delete() error {
	if _, err := r.db.Exec(`DELETE FROM weight_overrides`); err != nil {
		return fmt.Errorf("failed to delete weight overrides: %w", err)
	}
	r.log.Info().Msg("Weight overrides cleared")
	return nil
}

func (r *Repository) getGroup(group string) (map[catalog.Key]float64, error) {
	var raw string
	err := r.db.QueryRow(
		`SELECT weights_json FROM weight_overrides WHERE group_name = ?`, group,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s overrides: %w", group, err)
	}

	var weights map[catalog.Key]float64
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		return nil, fmt.Errorf("corrupt %s override row: %w", group, err)
	}
	return weights, nil
}

func (r *Repository) saveGroup(group string, weights map[catalog.Key]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("refusing to save empty %s weights", group)
	}

	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("failed to marshal %s weights: %w", group, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO weight_overrides (group_name, weights_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(group_name) DO UPDATE SET
			weights_json = excluded.weights_json,
			updated_at   = excluded.updated_at
	`, group, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save %s overrides: %w", group, err)
	}

	r.log.Info().Str("group", group).Int("keys", len(weights)).Msg("Saved weight overrides")
	return nil
}
