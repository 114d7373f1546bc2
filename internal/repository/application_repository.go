package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/tpc-facilities/parking-lottery/internal/model"
)

// ApplicationRepo provides CRUD operations for quarterly parking
// applications.  One row exists per (period, applicant); the unique
// key on those two columns backs the duplicate-submission rule.  All
// timestamp fields are assumed to be stored in UTC.
type ApplicationRepo struct {
    DB *sql.DB
}

// NewApplicationRepo returns a new ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{DB: db} }

const applicationColumns = `id, period, applicant_id, name, unit, plate, contact, category, plate_bound, status, submission_token, created_at`

func scanApplication(row interface {
    Scan(dest ...interface{}) error
}, a *model.Application) error {
    return row.Scan(
        &a.ID, &a.Period, &a.ApplicantID, &a.Name, &a.Unit, &a.Plate,
        &a.Contact, &a.Category, &a.PlateBound, &a.Status,
        &a.SubmissionToken, &a.CreatedAt,
    )
}

// InsertTx writes a new application within the scope of an existing
// transaction and populates the generated ID on the provided record.
// A duplicate (period, applicant) pair surfaces as ErrConflict so the
// caller can distinguish it from other database failures.
func (r *ApplicationRepo) InsertTx(ctx context.Context, tx *sql.Tx, a *model.Application) error {
    const q = `INSERT INTO applications
        (period, applicant_id, name, unit, plate, contact, category, plate_bound, status, submission_token)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        a.Period, a.ApplicantID, a.Name, a.Unit, a.Plate, a.Contact,
        a.Category, a.PlateBound, a.Status, a.SubmissionToken)
    if err != nil {
        // MySQL duplicate-key error code
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    a.ID = uint64(id)
    return nil
}

// Exists reports whether an application is already recorded for the
// given period and applicant.
func (r *ApplicationRepo) Exists(ctx context.Context, periodCode, applicantID string) (bool, error) {
    const q = `SELECT 1 FROM applications WHERE period = ? AND applicant_id = ? LIMIT 1`
    var one int
    err := r.DB.QueryRowContext(ctx, q, periodCode, applicantID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ListCategoryHistory returns the distinct period codes among the given
// periods in which the applicant held an application with one of the
// given categories.  It backs both the pregnancy-status classification
// and the general/protected look-back.
func (r *ApplicationRepo) ListCategoryHistory(ctx context.Context, applicantID string, categories, periods []string) ([]string, error) {
    if len(categories) == 0 || len(periods) == 0 {
        return nil, nil
    }
    q := `SELECT DISTINCT period FROM applications WHERE applicant_id = ?`
    args := []interface{}{applicantID}
    q += ` AND category IN (` + placeholders(len(categories)) + `)`
    for _, c := range categories {
        args = append(args, c)
    }
    q += ` AND period IN (` + placeholders(len(periods)) + `)`
    for _, p := range periods {
        args = append(args, p)
    }
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []string
    for rows.Next() {
        var p string
        if err := rows.Scan(&p); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// HasCategory reports whether the applicant ever held an application
// with the given category, in any period.  Used for the disabled-status
// look-back, which has no time bound.
func (r *ApplicationRepo) HasCategory(ctx context.Context, applicantID, category string) (bool, error) {
    const q = `SELECT 1 FROM applications WHERE applicant_id = ? AND category = ? LIMIT 1`
    var one int
    err := r.DB.QueryRowContext(ctx, q, applicantID, category).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// GetByToken loads an application by its submission token.  Returns
// sql.ErrNoRows when the token is unknown.
func (r *ApplicationRepo) GetByToken(ctx context.Context, token string) (model.Application, error) {
    const q = `SELECT ` + applicationColumns + ` FROM applications WHERE submission_token = ? LIMIT 1`
    var a model.Application
    err := scanApplication(r.DB.QueryRowContext(ctx, q, token), &a)
    return a, err
}

// ListPendingEvidence returns all applications still waiting for
// supplementary documents, oldest first.  This is the review queue.
func (r *ApplicationRepo) ListPendingEvidence(ctx context.Context) ([]model.Application, error) {
    const q = `SELECT ` + applicationColumns + ` FROM applications
        WHERE status = ? ORDER BY created_at ASC`
    return r.list(ctx, q, model.StatusPendingEvidence)
}

// ListByPeriod returns every application recorded for a period, newest
// first.
func (r *ApplicationRepo) ListByPeriod(ctx context.Context, periodCode string) ([]model.Application, error) {
    const q = `SELECT ` + applicationColumns + ` FROM applications
        WHERE period = ? ORDER BY created_at DESC`
    return r.list(ctx, q, periodCode)
}

func (r *ApplicationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Application, error) {
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Application, 0)
    for rows.Next() {
        var a model.Application
        if err := scanApplication(rows, &a); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// ApproveTx marks an application complete and binds its plate within
// the given transaction.  The caller records the plate approval and
// commits.
func (r *ApplicationRepo) ApproveTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE applications SET plate_bound = 1, status = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, model.StatusComplete, id)
    return err
}

// DeleteByPeriodApplicantTx removes the application for the given
// period and applicant and reports how many rows were deleted.
// Rejection and administrative deletion share this path.
func (r *ApplicationRepo) DeleteByPeriodApplicantTx(ctx context.Context, tx *sql.Tx, periodCode, applicantID string) (int64, error) {
    const q = `DELETE FROM applications WHERE period = ? AND applicant_id = ?`
    res, err := tx.ExecContext(ctx, q, periodCode, applicantID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ListGeneralParticipants returns unit, name and applicant id for every
// general-category application of the period.  Only COMPLETE
// applications participate in the draw; pending-evidence rows are not
// yet accepted.
func (r *ApplicationRepo) ListGeneralParticipants(ctx context.Context, periodCode string) ([]model.Application, error) {
    const q = `SELECT ` + applicationColumns + ` FROM applications
        WHERE period = ? AND category = ? AND status = ? ORDER BY id ASC`
    return r.list(ctx, q, periodCode, model.CategoryGeneral, model.StatusComplete)
}

// placeholders builds a "?,?,?" list of the given length for IN clauses.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.Repeat("?,", n-1) + "?"
}
