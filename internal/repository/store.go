package repository

import (
    "context"
    "database/sql"

    "github.com/tpc-facilities/parking-lottery/internal/model"
)

// Store bundles the repositories the eligibility resolver reads from
// and gives it one transactional write path.  It satisfies the
// resolver's Store interface so the rule engine never touches *sql.DB
// directly and can be exercised against a fake in tests.
type Store struct {
    DB      *sql.DB
    Apps    *ApplicationRepo
    Entries *LotteryRepo
    Plates  *PlateRepo
    Spaces  *SpaceRepo
}

// NewStore wires a Store over one shared database handle.
func NewStore(db *sql.DB) *Store {
    return &Store{
        DB:      db,
        Apps:    NewApplicationRepo(db),
        Entries: NewLotteryRepo(db),
        Plates:  NewPlateRepo(db),
        Spaces:  NewSpaceRepo(db),
    }
}

func (s *Store) HasApplication(ctx context.Context, periodCode, applicantID string) (bool, error) {
    return s.Apps.Exists(ctx, periodCode, applicantID)
}

func (s *Store) ListCategoryHistory(ctx context.Context, applicantID string, categories, periods []string) ([]string, error) {
    return s.Apps.ListCategoryHistory(ctx, applicantID, categories, periods)
}

func (s *Store) HasCategoryRecord(ctx context.Context, applicantID, category string) (bool, error) {
    return s.Apps.HasCategory(ctx, applicantID, category)
}

func (s *Store) IsPlateApproved(ctx context.Context, applicantID, plate string) (bool, error) {
    return s.Plates.IsApproved(ctx, applicantID, plate)
}

func (s *Store) CountUnpaidLottery(ctx context.Context, applicantID, periodCode string) (int, error) {
    return s.Entries.CountUnpaid(ctx, applicantID, periodCode)
}

func (s *Store) HasSettledLottery(ctx context.Context, applicantID, periodCode string) (bool, error) {
    return s.Entries.HasSettled(ctx, applicantID, periodCode)
}

func (s *Store) ListGeneralParticipants(ctx context.Context, periodCode string) ([]model.Application, error) {
    return s.Apps.ListGeneralParticipants(ctx, periodCode)
}

func (s *Store) ListOpenSpaces(ctx context.Context, periodCode string) ([]string, error) {
    return s.Spaces.ListOpen(ctx, periodCode)
}

func (s *Store) CountOpenSpaces(ctx context.Context, periodCode string) (int, error) {
    return s.Spaces.CountOpen(ctx, periodCode)
}

func (s *Store) HasDrawResults(ctx context.Context, periodCode string) (bool, error) {
    return s.Entries.HasDrawResults(ctx, periodCode)
}

// SaveEntries writes a whole draw batch in one transaction so a partial
// allocation can never become visible.
func (s *Store) SaveEntries(ctx context.Context, entries []model.LotteryEntry) error {
    if len(entries) == 0 {
        return nil
    }
    tx, err := s.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.Entries.BulkInsertTx(ctx, tx, entries); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// SaveDecision persists an accepted application together with its
// immediate lottery entry, if the decision granted one, in a single
// transaction.  Either both rows land or neither does.
func (s *Store) SaveDecision(ctx context.Context, app *model.Application, entry *model.LotteryEntry) error {
    tx, err := s.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.Apps.InsertTx(ctx, tx, app); err != nil {
        return err
    }
    if entry != nil {
        if err := s.Entries.InsertTx(ctx, tx, entry); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
