package eligibility

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tpc-facilities/parking-lottery/internal/lock"
    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/period"
)

// fakeStore is an in-memory stand-in for the MySQL-backed store.  Each
// field preloads one answer the resolver may ask for.
type fakeStore struct {
    hasApplication  bool
    pregnantPeriods []string // periods holding a 孕婦 application
    disabledRecord  bool
    plateApproved   bool
    unpaidByPeriod  map[string]int
    settledByPeriod map[string]bool
    heldLastPeriod  bool // general/protected application in previous period

    savedApp   *model.Application
    savedEntry *model.LotteryEntry
    saveErr    error
}

func (f *fakeStore) HasApplication(ctx context.Context, periodCode, applicantID string) (bool, error) {
    return f.hasApplication, nil
}

func (f *fakeStore) ListCategoryHistory(ctx context.Context, applicantID string, categories, periods []string) ([]string, error) {
    if len(categories) == 1 && categories[0] == model.CategoryPregnant {
        var out []string
        for _, p := range periods {
            for _, have := range f.pregnantPeriods {
                if p == have {
                    out = append(out, p)
                }
            }
        }
        return out, nil
    }
    if f.heldLastPeriod {
        return []string{periods[0]}, nil
    }
    return nil, nil
}

func (f *fakeStore) HasCategoryRecord(ctx context.Context, applicantID, category string) (bool, error) {
    return f.disabledRecord, nil
}

func (f *fakeStore) IsPlateApproved(ctx context.Context, applicantID, plate string) (bool, error) {
    return f.plateApproved, nil
}

func (f *fakeStore) CountUnpaidLottery(ctx context.Context, applicantID, periodCode string) (int, error) {
    return f.unpaidByPeriod[periodCode], nil
}

func (f *fakeStore) HasSettledLottery(ctx context.Context, applicantID, periodCode string) (bool, error) {
    return f.settledByPeriod[periodCode], nil
}

func (f *fakeStore) SaveDecision(ctx context.Context, app *model.Application, entry *model.LotteryEntry) error {
    if f.saveErr != nil {
        return f.saveErr
    }
    f.savedApp = app
    f.savedEntry = entry
    return nil
}

type fakeNotifier struct {
    subject string
    body    string
    sent    int
    err     error
}

func (n *fakeNotifier) Send(ctx context.Context, applicantID, name, body, subject string) error {
    n.sent++
    n.body = body
    n.subject = subject
    return n.err
}

type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context) (func(), error) { return nil, lock.ErrBusy }

var testWindow = period.Window{Current: "11302", Previous1: "11301", Previous2: "11204"}

func validSubmission(category string) Submission {
    return Submission{
        Unit:        "資訊處",
        Name:        "王小明",
        Plate:       "ABC1234",
        ApplicantID: "102030",
        Category:    category,
        Contact:     "分機2345",
    }
}

func newTestResolver(store *fakeStore, notifier Notifier) *Resolver {
    return NewResolver(store, notifier, lock.NewLocalLock(), "parking@example.com")
}

func TestSubmitValidation(t *testing.T) {
    r := newTestResolver(&fakeStore{}, nil)

    missing := validSubmission(model.CategoryGeneral)
    missing.Contact = ""
    _, err := r.Submit(context.Background(), testWindow, missing)
    assert.ErrorIs(t, err, ErrIncompleteForm)

    badPlate := validSubmission(model.CategoryGeneral)
    badPlate.Plate = "abc-1234"
    _, err = r.Submit(context.Background(), testWindow, badPlate)
    assert.ErrorIs(t, err, ErrMalformedPlate)

    badID := validSubmission(model.CategoryGeneral)
    badID.ApplicantID = "A102030"
    _, err = r.Submit(context.Background(), testWindow, badID)
    assert.ErrorIs(t, err, ErrMalformedID)
}

func TestSubmitDuplicate(t *testing.T) {
    store := &fakeStore{hasApplication: true}
    r := newTestResolver(store, nil)

    _, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    assert.ErrorIs(t, err, ErrDuplicate)
    assert.Nil(t, store.savedApp)
}

func TestSubmitLockBusy(t *testing.T) {
    r := NewResolver(&fakeStore{}, nil, busyLocker{}, "parking@example.com")
    _, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    assert.ErrorIs(t, err, lock.ErrBusy)
}

func TestGeneralFirstTimePlate(t *testing.T) {
    store := &fakeStore{}
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryGeneral, d.Category)
    assert.False(t, d.PlateBound)
    assert.True(t, d.EvidenceRequired)
    assert.False(t, d.LotteryEntry)
    assert.NotEmpty(t, d.SubmissionToken)

    require.NotNil(t, store.savedApp)
    assert.Equal(t, model.StatusPendingEvidence, store.savedApp.Status)
    assert.Equal(t, "11302", store.savedApp.Period)
    assert.Nil(t, store.savedEntry)
    assert.Equal(t, 1, notifier.sent)
    assert.Equal(t, "本期停車抽籤申請補證明文件通知", notifier.subject)
}

func TestGeneralBoundPlate(t *testing.T) {
    store := &fakeStore{plateApproved: true}
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryGeneral, d.Category)
    assert.True(t, d.PlateBound)
    assert.False(t, d.EvidenceRequired)
    assert.False(t, d.LotteryEntry)
    assert.Equal(t, model.StatusComplete, store.savedApp.Status)
    assert.Equal(t, "本期停車抽籤申請成功通知", notifier.subject)
}

func TestGeneralAlreadyParked(t *testing.T) {
    store := &fakeStore{
        settledByPeriod: map[string]bool{"11301": true},
        heldLastPeriod:  true,
        plateApproved:   true,
    }
    r := newTestResolver(store, nil)

    _, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    assert.ErrorIs(t, err, ErrAlreadyParked)
    assert.Nil(t, store.savedApp)
}

func TestGeneralSettledWithoutApplicationIsNotBlocked(t *testing.T) {
    // a transferred-in slot without an own application does not burn
    // the next cycle
    store := &fakeStore{
        settledByPeriod: map[string]bool{"11301": true},
        plateApproved:   true,
    }
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)
    assert.Equal(t, model.CategoryGeneral, d.Category)
}

func TestProtectedUpgrade(t *testing.T) {
    store := &fakeStore{
        unpaidByPeriod: map[string]int{"11301": 1, "11204": 1},
        plateApproved:  true,
    }
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryProtected, d.Category)
    assert.True(t, d.LotteryEntry)
    require.NotNil(t, store.savedEntry)
    assert.Equal(t, "11302", store.savedEntry.Period)
    assert.Equal(t, model.PaymentUnpaid, store.savedEntry.PaymentStatus)
    assert.Empty(t, store.savedEntry.SpaceID)
    assert.Equal(t, "本期停車抽籤申請成功並獲得保障車位", notifier.subject)
}

func TestProtectedUpgradeUnboundPlate(t *testing.T) {
    store := &fakeStore{
        unpaidByPeriod: map[string]int{"11301": 2, "11204": 1},
    }
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryProtected, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.True(t, d.LotteryEntry)
    assert.Equal(t, model.StatusPendingEvidence, store.savedApp.Status)
    require.NotNil(t, store.savedEntry)
}

func TestProtectedNeedsBothPeriodsUnpaid(t *testing.T) {
    store := &fakeStore{
        unpaidByPeriod: map[string]int{"11301": 1},
        plateApproved:  true,
    }
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)
    assert.Equal(t, model.CategoryGeneral, d.Category)
    assert.False(t, d.LotteryEntry)
}

func TestGeneralCarriesOverPregnancy(t *testing.T) {
    store := &fakeStore{
        pregnantPeriods: []string{"11301"},
        plateApproved:   true,
    }
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryPregnant, d.Category)
    assert.True(t, d.LotteryEntry)
    assert.False(t, d.EvidenceRequired)
    assert.Equal(t, model.CategoryPregnant, store.savedApp.Category)
    require.NotNil(t, store.savedEntry)
    assert.Equal(t, "本期停車抽籤申請成功並將申請身分改為孕婦通知", notifier.subject)
}

func TestGeneralCarriesOverPregnancyUnboundPlate(t *testing.T) {
    store := &fakeStore{pregnantPeriods: []string{"11301"}}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryPregnant, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.True(t, d.LotteryEntry)
}

func TestPregnantFirstTime(t *testing.T) {
    store := &fakeStore{plateApproved: true}
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryPregnant))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryPregnant, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.False(t, d.LotteryEntry)
    assert.False(t, d.PlateBound)
    assert.Equal(t, model.StatusPendingEvidence, store.savedApp.Status)
    assert.Equal(t, "本期停車補證明文件通知", notifier.subject)
}

func TestPregnantValidClaim(t *testing.T) {
    store := &fakeStore{
        pregnantPeriods: []string{"11301"},
        plateApproved:   true,
    }
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryPregnant))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryPregnant, d.Category)
    assert.True(t, d.PlateBound)
    assert.True(t, d.LotteryEntry)
    assert.False(t, d.EvidenceRequired)
    require.NotNil(t, store.savedEntry)
}

func TestPregnantValidClaimUnboundPlate(t *testing.T) {
    store := &fakeStore{pregnantPeriods: []string{"11301"}}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryPregnant))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryPregnant, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.True(t, d.LotteryEntry)
}

func TestPregnantExpiredClaim(t *testing.T) {
    store := &fakeStore{
        pregnantPeriods: []string{"11204"},
        plateApproved:   true,
    }
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryPregnant))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryGeneral, d.Category)
    assert.False(t, d.LotteryEntry)
    assert.False(t, d.EvidenceRequired)
    assert.Equal(t, model.CategoryGeneral, store.savedApp.Category)
    assert.Nil(t, store.savedEntry)
    assert.Equal(t, "本期停車申請成功通知", notifier.subject)
}

func TestPregnantExpiredClaimUnboundPlate(t *testing.T) {
    store := &fakeStore{pregnantPeriods: []string{"11204"}}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryPregnant))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryGeneral, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.False(t, d.LotteryEntry)
}

func TestDisabledKnownApplicant(t *testing.T) {
    store := &fakeStore{disabledRecord: true, plateApproved: true}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryDisabled))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryDisabled, d.Category)
    assert.True(t, d.PlateBound)
    assert.True(t, d.LotteryEntry)
    assert.False(t, d.EvidenceRequired)
}

func TestDisabledKnownApplicantUnboundPlate(t *testing.T) {
    store := &fakeStore{disabledRecord: true}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryDisabled))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryDisabled, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.True(t, d.LotteryEntry)
}

func TestDisabledFirstTime(t *testing.T) {
    store := &fakeStore{plateApproved: true}
    r := newTestResolver(store, nil)

    d, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryDisabled))
    require.NoError(t, err)

    assert.Equal(t, model.CategoryDisabled, d.Category)
    assert.True(t, d.EvidenceRequired)
    assert.False(t, d.LotteryEntry)
}

func TestNotifierFailureDoesNotFailSubmit(t *testing.T) {
    store := &fakeStore{plateApproved: true}
    notifier := &fakeNotifier{err: errors.New("smtp down")}
    r := newTestResolver(store, notifier)

    _, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    assert.NoError(t, err)
    assert.Equal(t, 1, notifier.sent)
}

func TestSaveFailureSurfaces(t *testing.T) {
    store := &fakeStore{plateApproved: true, saveErr: errors.New("db gone")}
    notifier := &fakeNotifier{}
    r := newTestResolver(store, notifier)

    _, err := r.Submit(context.Background(), testWindow, validSubmission(model.CategoryGeneral))
    assert.Error(t, err)
    assert.Zero(t, notifier.sent)
}
