package db

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"nimbus/internal/types"
)

// MaxRecentLocations caps how many recents a client keeps; touching a sixth
// location evicts the oldest.
const MaxRecentLocations = 5

// coordScale rounds stored coordinates to four decimals (roughly 11 m), so
// repeat lookups of the same place collapse into one row.
const coordScale = 1e4

// RecentLocation is one entry in a client's recently viewed list.
type RecentLocation struct {
	ID       string    `json:"id"`
	ClientID string    `json:"-"`
	Name     string    `json:"name"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	ViewedAt time.Time `json:"viewed_at"`
}

// RecentsRepository provides data access for the recent_locations table.
type RecentsRepository struct {
	db DBTX
}

// NewRecentsRepository creates a RecentsRepository backed by the given
// connection (pool or transaction).
func NewRecentsRepository(db DBTX) *RecentsRepository {
	return &RecentsRepository{db: db}
}

func roundCoord(v float64) float64 {
	return math.Round(v*coordScale) / coordScale
}

// Touch records that a client viewed a location. Coordinates are rounded
// before storage so the same place dedups to one row; a repeat view refreshes
// the name and timestamp. Entries beyond MaxRecentLocations are evicted,
// oldest first.
func (r *RecentsRepository) Touch(ctx context.Context, clientID string, loc types.NamedLocation, viewedAt time.Time) (*RecentLocation, error) {
	if err := types.ValidateLocation(loc.Lat, loc.Lon); err != nil {
		return nil, err
	}

	entry := &RecentLocation{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Name:     loc.Name,
		Lat:      roundCoord(loc.Lat),
		Lon:      roundCoord(loc.Lon),
		ViewedAt: viewedAt.UTC(),
	}

	const upsert = `
		INSERT INTO recent_locations (id, client_id, name, lat, lon, viewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id, lat, lon)
		DO UPDATE SET name = EXCLUDED.name, viewed_at = EXCLUDED.viewed_at
		RETURNING id`

	row := r.db.QueryRow(ctx, upsert,
		entry.ID, entry.ClientID, entry.Name, entry.Lat, entry.Lon, entry.ViewedAt)
	if err := row.Scan(&entry.ID); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to save recent location", err)
	}

	const evict = `
		DELETE FROM recent_locations
		WHERE client_id = $1 AND id NOT IN (
			SELECT id FROM recent_locations
			WHERE client_id = $1
			ORDER BY viewed_at DESC
			LIMIT $2
		)`

	if _, err := r.db.Exec(ctx, evict, clientID, MaxRecentLocations); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to trim recent locations", err)
	}

	return entry, nil
}

// List returns a client's recents, most recently viewed first.
func (r *RecentsRepository) List(ctx context.Context, clientID string) ([]*RecentLocation, error) {
	const query = `
		SELECT id, client_id, name, lat, lon, viewed_at
		FROM recent_locations
		WHERE client_id = $1
		ORDER BY viewed_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, clientID, MaxRecentLocations)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to list recent locations", err)
	}
	defer rows.Close()

	var recents []*RecentLocation
	for rows.Next() {
		var rec RecentLocation
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Name, &rec.Lat, &rec.Lon, &rec.ViewedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB,
				"failed to scan recent location", err)
		}
		recents = append(recents, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to read recent locations", err)
	}

	return recents, nil
}

// Delete removes one recent entry owned by the client.
func (r *RecentsRepository) Delete(ctx context.Context, clientID, id string) error {
	const query = `DELETE FROM recent_locations WHERE client_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, clientID, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB,
			"failed to delete recent location", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundLocation,
			"recent location not found", nil)
	}
	return nil
}
