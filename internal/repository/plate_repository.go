package repository

import (
    "context"
    "database/sql"
)

// PlateRepo provides access to the approved-plates register.  The table
// is append-only: once an (applicant, plate) pair has passed review it
// stays approved forever, which is what exempts repeat applicants from
// resubmitting vehicle evidence.
type PlateRepo struct {
    DB *sql.DB
}

// NewPlateRepo returns a new PlateRepo bound to the given database.
func NewPlateRepo(db *sql.DB) *PlateRepo { return &PlateRepo{DB: db} }

// IsApproved reports whether the plate has previously been approved for
// the applicant.
func (r *PlateRepo) IsApproved(ctx context.Context, applicantID, plate string) (bool, error) {
    const q = `SELECT 1 FROM approved_plates WHERE applicant_id = ? AND plate = ? LIMIT 1`
    var one int
    err := r.DB.QueryRowContext(ctx, q, applicantID, plate).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// RecordApprovalTx appends an approval within the given transaction.
// INSERT IGNORE keeps the operation idempotent against the unique
// (applicant_id, plate) key; approving the same pair twice is a no-op,
// never an error, and rows are never deleted.
func (r *PlateRepo) RecordApprovalTx(ctx context.Context, tx *sql.Tx, applicantID, plate string) error {
    const q = `INSERT IGNORE INTO approved_plates (applicant_id, plate) VALUES (?, ?)`
    _, err := tx.ExecContext(ctx, q, applicantID, plate)
    return err
}
