package repository

import (
    "context"
    "database/sql"

    "github.com/tpc-facilities/parking-lottery/internal/model"
)

// LotteryRepo provides access to the paid-pool records created when an
// applicant wins a space, receives a guaranteed slot or lands on the
// waitlist.  Payment-status transitions are administrative and happen
// outside this service; the repository only reads them.
type LotteryRepo struct {
    DB *sql.DB
}

// NewLotteryRepo returns a new LotteryRepo bound to the given database.
func NewLotteryRepo(db *sql.DB) *LotteryRepo { return &LotteryRepo{DB: db} }

// InsertTx writes a single lottery entry within an existing
// transaction.  Used by the resolver for immediate guaranteed slots.
func (r *LotteryRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.LotteryEntry) error {
    const q = `INSERT INTO lottery_entries (period, applicant_id, space_id, payment_status)
        VALUES (?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, e.Period, e.ApplicantID, e.SpaceID, e.PaymentStatus)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// BulkInsertTx inserts the whole lottery batch in a single statement so
// that an allocation is written all-or-nothing together with the
// surrounding transaction.  Passing an empty slice has no effect.
func (r *LotteryRepo) BulkInsertTx(ctx context.Context, tx *sql.Tx, entries []model.LotteryEntry) error {
    if len(entries) == 0 {
        return nil
    }
    query := `INSERT INTO lottery_entries (period, applicant_id, space_id, payment_status) VALUES `
    args := make([]interface{}, 0, len(entries)*4)
    for i, e := range entries {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, e.Period, e.ApplicantID, e.SpaceID, e.PaymentStatus)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// CountUnpaid returns how many unpaid entries the applicant holds for
// the given period.  Two consecutive unpaid cycles grant protected
// status.
func (r *LotteryRepo) CountUnpaid(ctx context.Context, applicantID, periodCode string) (int, error) {
    const q = `SELECT COUNT(*) FROM lottery_entries
        WHERE applicant_id = ? AND period = ? AND payment_status = ?`
    var n int
    err := r.DB.QueryRowContext(ctx, q, applicantID, periodCode, model.PaymentUnpaid).Scan(&n)
    return n, err
}

// HasSettled reports whether the applicant has a paid or transferred
// entry for the period, i.e. actually occupied a space that cycle.
func (r *LotteryRepo) HasSettled(ctx context.Context, applicantID, periodCode string) (bool, error) {
    const q = `SELECT 1 FROM lottery_entries
        WHERE applicant_id = ? AND period = ? AND payment_status IN (?, ?) LIMIT 1`
    var one int
    err := r.DB.QueryRowContext(ctx, q, applicantID, periodCode,
        model.PaymentPaid, model.PaymentTransferred).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// HasDrawResults reports whether the draw already ran for the period.
// Guaranteed-category entries exist before the draw, so the check is
// scoped to entries held by general-category applicants, which only the
// draw creates.
func (r *LotteryRepo) HasDrawResults(ctx context.Context, periodCode string) (bool, error) {
    const q = `SELECT 1 FROM lottery_entries le
        JOIN applications a ON a.period = le.period AND a.applicant_id = le.applicant_id
        WHERE le.period = ? AND a.category = ? LIMIT 1`
    var one int
    err := r.DB.QueryRowContext(ctx, q, periodCode, model.CategoryGeneral).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ResultRow joins a lottery entry with the applicant's display data for
// the published results.  Name is the raw name; masking happens in the
// lottery package before publication.
type ResultRow struct {
    SpaceID     string `json:"space_id"`
    Unit        string `json:"unit"`
    Name        string `json:"name"`
    ApplicantID string `json:"-"`
}

// ListResults returns every entry of the period joined with the
// matching application, assigned spaces first, waitlist placeholders
// after, in insertion order.
func (r *LotteryRepo) ListResults(ctx context.Context, periodCode string) ([]ResultRow, error) {
    const q = `SELECT le.space_id, a.unit, a.name, le.applicant_id
        FROM lottery_entries le
        JOIN applications a ON a.period = le.period AND a.applicant_id = le.applicant_id
        WHERE le.period = ?
        ORDER BY le.id ASC`
    rows, err := r.DB.QueryContext(ctx, q, periodCode)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ResultRow, 0)
    for rows.Next() {
        var row ResultRow
        if err := rows.Scan(&row.SpaceID, &row.Unit, &row.Name, &row.ApplicantID); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    return out, rows.Err()
}

// DeleteByPeriodApplicantTx removes the applicant's entry for the
// period, if any.  Used when a pending application with a reserved slot
// is rejected.
func (r *LotteryRepo) DeleteByPeriodApplicantTx(ctx context.Context, tx *sql.Tx, periodCode, applicantID string) error {
    const q = `DELETE FROM lottery_entries WHERE period = ? AND applicant_id = ?`
    _, err := tx.ExecContext(ctx, q, periodCode, applicantID)
    return err
}
