package repository

import (
    "context"
    "database/sql"

    "github.com/tpc-facilities/parking-lottery/internal/model"
)

// SpaceRepo provides access to the static parking-space inventory.
type SpaceRepo struct {
    DB *sql.DB
}

// NewSpaceRepo returns a new SpaceRepo bound to the given database.
func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{DB: db} }

// ListOpen returns the identifiers of lottery-pool spaces that have not
// yet been assigned for the given period, in inventory order.
func (r *SpaceRepo) ListOpen(ctx context.Context, periodCode string) ([]string, error) {
    const q = `SELECT space_id FROM parking_spaces
        WHERE usage_status = ?
          AND space_id NOT IN (SELECT space_id FROM lottery_entries WHERE period = ?)
        ORDER BY space_id ASC`
    rows, err := r.DB.QueryContext(ctx, q, model.UsageLottery, periodCode)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]string, 0)
    for rows.Next() {
        var id string
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        out = append(out, id)
    }
    return out, rows.Err()
}

// CountOpen returns how many lottery-pool spaces are still unassigned
// for the period.  Backs the pre-flight display before a draw.
func (r *SpaceRepo) CountOpen(ctx context.Context, periodCode string) (int, error) {
    const q = `SELECT COUNT(*) FROM parking_spaces
        WHERE usage_status = ?
          AND space_id NOT IN (SELECT space_id FROM lottery_entries WHERE period = ?)`
    var n int
    err := r.DB.QueryRowContext(ctx, q, model.UsageLottery, periodCode).Scan(&n)
    return n, err
}

// List returns the full inventory ordered by space identifier.
func (r *SpaceRepo) List(ctx context.Context) ([]model.ParkingSpace, error) {
    const q = `SELECT space_id, usage_status, note FROM parking_spaces ORDER BY space_id ASC`
    rows, err := r.DB.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ParkingSpace, 0)
    for rows.Next() {
        var s model.ParkingSpace
        var note sql.NullString
        if err := rows.Scan(&s.SpaceID, &s.UsageStatus, &note); err != nil {
            return nil, err
        }
        s.Note = note.String
        out = append(out, s)
    }
    return out, rows.Err()
}

// Update rewrites the usage status and note of one space.  Returns
// ErrSpaceNotFound when the identifier does not exist, so the caller
// surfaces the administrative data issue instead of silently creating
// nothing.
func (r *SpaceRepo) Update(ctx context.Context, spaceID, usageStatus, note string) error {
    const q = `UPDATE parking_spaces SET usage_status = ?, note = ? WHERE space_id = ?`
    res, err := r.DB.ExecContext(ctx, q, usageStatus, note, spaceID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // distinguish "no such space" from "no change": a same-value
        // update still matches a row but reports zero affected rows on
        // MySQL, so probe for existence before failing
        var one int
        err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM parking_spaces WHERE space_id = ? LIMIT 1`, spaceID).Scan(&one)
        if err == sql.ErrNoRows {
            return ErrSpaceNotFound
        }
        return err
    }
    return nil
}
