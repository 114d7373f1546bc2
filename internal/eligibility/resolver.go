// Package eligibility implements the application-state resolution
// engine: given a submitted form and the applicant's history over the
// two preceding periods, it decides the final category, whether the
// declared plate is already bound, whether a paid-pool entry is created
// immediately, and whether supplementary evidence is still owed.  The
// rules mirror the building-management regulations; the branch texts
// are the exact notices applicants have been receiving for years and
// must not be reworded.
package eligibility

import (
    "context"
    "errors"
    "fmt"
    "log"
    "regexp"

    "github.com/google/uuid"

    "github.com/tpc-facilities/parking-lottery/internal/lock"
    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/period"
)

// Validation and conflict sentinels.  Validation errors mean the
// applicant must correct the form; conflict errors mean the submission
// must not be retried as-is.  Lock contention surfaces as lock.ErrBusy.
var (
    ErrIncompleteForm = errors.New("form is incomplete")
    ErrMalformedPlate = errors.New("plate must contain only A-Z and digits")
    ErrMalformedID    = errors.New("applicant id must contain only digits")
    ErrDuplicate      = errors.New("application already submitted this period")
    ErrAlreadyParked  = errors.New("parked last period, wait for the next cycle")
)

var (
    platePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
    idPattern    = regexp.MustCompile(`^[0-9]+$`)
)

// Store is the read/write surface the resolver needs from the record
// store.  SaveDecision must be atomic: the application row and the
// optional immediate lottery entry land together or not at all.
type Store interface {
    HasApplication(ctx context.Context, periodCode, applicantID string) (bool, error)
    ListCategoryHistory(ctx context.Context, applicantID string, categories, periods []string) ([]string, error)
    HasCategoryRecord(ctx context.Context, applicantID, category string) (bool, error)
    IsPlateApproved(ctx context.Context, applicantID, plate string) (bool, error)
    CountUnpaidLottery(ctx context.Context, applicantID, periodCode string) (int, error)
    HasSettledLottery(ctx context.Context, applicantID, periodCode string) (bool, error)
    SaveDecision(ctx context.Context, app *model.Application, entry *model.LotteryEntry) error
}

// Notifier delivers the branch-specific notice to the applicant.
// Failures are advisory: the persisted decision is the source of truth,
// so senders log and move on.
type Notifier interface {
    Send(ctx context.Context, applicantID, name, body, subject string) error
}

// Submission is one parking application as it arrives from the form.
type Submission struct {
    Unit        string `json:"unit"`
    Name        string `json:"name"`
    Plate       string `json:"plate"`
    ApplicantID string `json:"applicant_id"`
    Category    string `json:"category"`
    Contact     string `json:"contact"`
}

// Decision is the resolver's verdict on a submission.
type Decision struct {
    Category         string `json:"category"`
    PlateBound       bool   `json:"plate_bound"`
    EvidenceRequired bool   `json:"evidence_required"`
    LotteryEntry     bool   `json:"lottery_entry_created"`
    SubmissionToken  string `json:"submission_token"`
    Message          string `json:"message"`

    mailBody    string
    mailSubject string
}

// Resolver executes the rule set.  All collaborators are injected; the
// deployment wrapper owns their lifecycle.
type Resolver struct {
    Store         Store
    Notifier      Notifier
    Lock          lock.Locker
    EvidenceInbox string // mailbox applicants send documents to
}

// NewResolver builds a Resolver.  Store and Lock must be non-nil;
// Notifier may be nil to disable notices.
func NewResolver(store Store, notifier Notifier, locker lock.Locker, evidenceInbox string) *Resolver {
    if store == nil || locker == nil {
        panic("nil dependency passed to NewResolver")
    }
    return &Resolver{Store: store, Notifier: notifier, Lock: locker, EvidenceInbox: evidenceInbox}
}

// Submit validates and resolves one submission for the period window w.
// The read-check-write sequence runs under the deployment-wide lock; a
// failed acquisition returns lock.ErrBusy without touching any state.
func (r *Resolver) Submit(ctx context.Context, w period.Window, sub Submission) (*Decision, error) {
    if err := validate(sub); err != nil {
        return nil, err
    }

    release, err := r.Lock.Acquire(ctx)
    if err != nil {
        return nil, err
    }
    defer release()

    exists, err := r.Store.HasApplication(ctx, w.Current, sub.ApplicantID)
    if err != nil {
        return nil, fmt.Errorf("duplicate check: %w", err)
    }
    if exists {
        return nil, ErrDuplicate
    }

    var d *Decision
    switch sub.Category {
    case model.CategoryPregnant:
        d, err = r.resolvePregnant(ctx, w, sub)
    case model.CategoryDisabled:
        d, err = r.resolveDisabled(ctx, w, sub)
    default:
        d, err = r.resolveGeneral(ctx, w, sub)
    }
    if err != nil {
        return nil, err
    }

    if err := r.persist(ctx, w, sub, d); err != nil {
        return nil, err
    }
    r.notify(ctx, sub, d)
    return d, nil
}

func validate(sub Submission) error {
    if sub.Unit == "" || sub.Name == "" || sub.Plate == "" ||
        sub.ApplicantID == "" || sub.Category == "" || sub.Contact == "" {
        return ErrIncompleteForm
    }
    if !platePattern.MatchString(sub.Plate) {
        return ErrMalformedPlate
    }
    if !idPattern.MatchString(sub.ApplicantID) {
        return ErrMalformedID
    }
    return nil
}

// pregnantStatus classifies the applicant's pregnancy claims over the
// two preceding periods.
type pregnantStatus int

const (
    pregnantNone pregnantStatus = iota
    pregnantOnlyLastPeriod
    pregnantOnlyBeforeLast
    pregnantBoth
)

func (r *Resolver) pregnantStatus(ctx context.Context, w period.Window, applicantID string) (pregnantStatus, error) {
    periods, err := r.Store.ListCategoryHistory(ctx, applicantID,
        []string{model.CategoryPregnant}, []string{w.Previous1, w.Previous2})
    if err != nil {
        return pregnantNone, err
    }
    var last, before bool
    for _, p := range periods {
        if p == w.Previous1 {
            last = true
        }
        if p == w.Previous2 {
            before = true
        }
    }
    switch {
    case last && before:
        return pregnantBoth, nil
    case last:
        return pregnantOnlyLastPeriod, nil
    case before:
        return pregnantOnlyBeforeLast, nil
    default:
        return pregnantNone, nil
    }
}

func (r *Resolver) resolvePregnant(ctx context.Context, w period.Window, sub Submission) (*Decision, error) {
    status, err := r.pregnantStatus(ctx, w, sub.ApplicantID)
    if err != nil {
        return nil, fmt.Errorf("pregnant history: %w", err)
    }
    switch status {
    case pregnantNone:
        // first-time claim: evidence before anything else
        return &Decision{
            Category:         model.CategoryPregnant,
            EvidenceRequired: true,
            Message:          fmt.Sprintf("您為第一次孕婦申請，請將相關證明文件(如 :孕婦手冊、行照、駕照)電郵至%s", r.EvidenceInbox),
            mailBody:         "您為第一次孕婦申請，請將相關證明文件(如 :孕婦手冊、行照、駕照)電郵回覆。",
            mailSubject:      "本期停車補證明文件通知",
        }, nil
    case pregnantOnlyLastPeriod:
        bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
        if err != nil {
            return nil, fmt.Errorf("plate check: %w", err)
        }
        if bound {
            return &Decision{
                Category:     model.CategoryPregnant,
                PlateBound:   true,
                LotteryEntry: true,
                Message:      `本期"孕婦"身分停車申請成功`,
                mailBody:     "您有孕婦資格，本期停車申請成功，感謝您。",
                mailSubject:  "本期停車申請成功通知",
            }, nil
        }
        // slot is reserved, only the vehicle papers are missing
        return &Decision{
            Category:         model.CategoryPregnant,
            EvidenceRequired: true,
            LotteryEntry:     true,
            Message:          fmt.Sprintf("這輛車為第一次申請，請將相關證明文件電郵至%s", r.EvidenceInbox),
            mailBody:         "您有孕婦資格，但是該車為第一次申請停車，請補相關證明文件電郵回覆。",
            mailSubject:      "本期停車補證明文件通知",
        }, nil
    default:
        // claim expired: demote to general, which goes through the
        // lottery instead of receiving a direct slot
        bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
        if err != nil {
            return nil, fmt.Errorf("plate check: %w", err)
        }
        if bound {
            return &Decision{
                Category:    model.CategoryGeneral,
                PlateBound:  true,
                Message:     "您已經過了孕婦申請期限，系統自動將您轉為一般身分申請本期停車成功。",
                mailBody:    "您已經過了孕婦申請期限，系統自動將您轉為一般停車申請停車抽籤，感謝您。",
                mailSubject: "本期停車申請成功通知",
            }, nil
        }
        return &Decision{
            Category:         model.CategoryGeneral,
            EvidenceRequired: true,
            Message:          fmt.Sprintf("您已經過了孕婦申請期限，系統自動將您轉為一般身分申請本期停車，並且這輛車為第一次申請，請將相關證明文件電郵至%s", r.EvidenceInbox),
            mailBody:         "您已經過了孕婦申請期限，系統自動將您轉為一般停車申請停車抽籤，但是該車為第一次申請停車，請補相關證明文件電郵回覆。",
            mailSubject:      "本期停車補證明文件通知",
        }, nil
    }
}

func (r *Resolver) resolveDisabled(ctx context.Context, w period.Window, sub Submission) (*Decision, error) {
    known, err := r.Store.HasCategoryRecord(ctx, sub.ApplicantID, model.CategoryDisabled)
    if err != nil {
        return nil, fmt.Errorf("disabled history: %w", err)
    }
    if !known {
        return &Decision{
            Category:         model.CategoryDisabled,
            EvidenceRequired: true,
            Message:          fmt.Sprintf("您為第一次身心障礙申請，請將相關證明文件(如 :身心障礙證明、行照、駕照)電郵至%s", r.EvidenceInbox),
            mailBody:         "您為第一次身心障礙申請，請將相關證明文件(如 :身心障礙證明、行照、駕照)電郵回覆。",
            mailSubject:      "本期停車補證明文件通知",
        }, nil
    }
    bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
    if err != nil {
        return nil, fmt.Errorf("plate check: %w", err)
    }
    if bound {
        return &Decision{
            Category:     model.CategoryDisabled,
            PlateBound:   true,
            LotteryEntry: true,
            Message:      `本期"身心障礙"身分停車申請成功`,
            mailBody:     "您有身心障礙資格，本期停車申請成功，感謝您。",
            mailSubject:  "本期停車申請成功通知",
        }, nil
    }
    return &Decision{
        Category:         model.CategoryDisabled,
        EvidenceRequired: true,
        LotteryEntry:     true,
        Message:          fmt.Sprintf("這輛車為第一次申請，請將相關證明文件電郵至%s", r.EvidenceInbox),
        mailBody:         "您有身心障礙資格，但是該車為第一次申請停車，請補相關證明文件電郵回覆。",
        mailSubject:      "本期停車補證明文件通知",
    }, nil
}

func (r *Resolver) resolveGeneral(ctx context.Context, w period.Window, sub Submission) (*Decision, error) {
    // a paid/transferred entry plus a general-or-protected application
    // last period means the applicant actually parked; one cycle off
    settled, err := r.Store.HasSettledLottery(ctx, sub.ApplicantID, w.Previous1)
    if err != nil {
        return nil, fmt.Errorf("settled check: %w", err)
    }
    if settled {
        held, err := r.Store.ListCategoryHistory(ctx, sub.ApplicantID,
            []string{model.CategoryGeneral, model.CategoryProtected}, []string{w.Previous1})
        if err != nil {
            return nil, fmt.Errorf("previous application check: %w", err)
        }
        if len(held) > 0 {
            return nil, ErrAlreadyParked
        }
    }

    protected, err := r.isProtected(ctx, w, sub.ApplicantID)
    if err != nil {
        return nil, err
    }
    if protected {
        bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
        if err != nil {
            return nil, fmt.Errorf("plate check: %w", err)
        }
        if bound {
            return &Decision{
                Category:     model.CategoryProtected,
                PlateBound:   true,
                LotteryEntry: true,
                Message:      "由於您前兩期申請停車都未抽籤，本期獲得保障資格!",
                mailBody:     "經確認您連續兩期都有申請停車，且都未中籤，本期將獲得保障車位，感謝您。",
                mailSubject:  "本期停車抽籤申請成功並獲得保障車位",
            }, nil
        }
        return &Decision{
            Category:         model.CategoryProtected,
            EvidenceRequired: true,
            LotteryEntry:     true,
            Message:          fmt.Sprintf("本期獲得保障資格，但是此車輛為第一次申請，請將相關證明文件電郵至%s!", r.EvidenceInbox),
            mailBody:         "經確認您連續兩期都有申請停車，且都未中籤，本期將獲得保障車位，但是該車為第一次申請停車，請補相關證明文件電郵回覆。",
            mailSubject:      "本期停車抽籤申請補證明文件通知",
        }, nil
    }

    // a pregnancy validated last period carries its protection one more
    // cycle even when the applicant declares general
    status, err := r.pregnantStatus(ctx, w, sub.ApplicantID)
    if err != nil {
        return nil, fmt.Errorf("pregnant history: %w", err)
    }
    if status == pregnantOnlyLastPeriod {
        bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
        if err != nil {
            return nil, fmt.Errorf("plate check: %w", err)
        }
        if bound {
            return &Decision{
                Category:     model.CategoryPregnant,
                PlateBound:   true,
                LotteryEntry: true,
                Message:      "由於您上期申請孕婦資格成功，本期將自動替換為孕婦身分申請!",
                mailBody:     "由於您上期孕婦申請成功，您的申請資格已由一般轉為孕婦身份，將獲得保障車位，感謝您。",
                mailSubject:  "本期停車抽籤申請成功並將申請身分改為孕婦通知",
            }, nil
        }
        return &Decision{
            Category:         model.CategoryPregnant,
            EvidenceRequired: true,
            LotteryEntry:     true,
            Message:          fmt.Sprintf(`由於您上期已通過孕婦資格申請，這期申請身分資格已改為"孕婦"，另請附車輛證明文件電郵至%s`, r.EvidenceInbox),
            mailBody:         "由於您上期孕婦申請成功，您的申請資格已由一般轉為孕婦身份，但是您第一次申請該車停車，請補相關證明文件電郵回覆。",
            mailSubject:      "本期停車抽籤申請補證明文件通知",
        }, nil
    }

    bound, err := r.Store.IsPlateApproved(ctx, sub.ApplicantID, sub.Plate)
    if err != nil {
        return nil, fmt.Errorf("plate check: %w", err)
    }
    if bound {
        // enters the lottery pool later; no entry until the draw
        return &Decision{
            Category:    model.CategoryGeneral,
            PlateBound:  true,
            Message:     "本期一般車位申請成功!",
            mailBody:    "本期您一般身分停車抽籤申請成功，感謝您。",
            mailSubject: "本期停車抽籤申請成功通知",
        }, nil
    }
    return &Decision{
        Category:         model.CategoryGeneral,
        EvidenceRequired: true,
        Message:          fmt.Sprintf("此輛車為第一次申請，請將相關證明文件寄送至%s", r.EvidenceInbox),
        mailBody:         "您為第一次申請停車位，請將相關證明文件電郵回覆。",
        mailSubject:      "本期停車抽籤申請補證明文件通知",
    }, nil
}

// isProtected reports whether the applicant sat out two consecutive
// unsuccessful lottery cycles: an unpaid entry in both preceding
// periods.
func (r *Resolver) isProtected(ctx context.Context, w period.Window, applicantID string) (bool, error) {
    n1, err := r.Store.CountUnpaidLottery(ctx, applicantID, w.Previous1)
    if err != nil {
        return false, fmt.Errorf("unpaid count previous1: %w", err)
    }
    if n1 == 0 {
        return false, nil
    }
    n2, err := r.Store.CountUnpaidLottery(ctx, applicantID, w.Previous2)
    if err != nil {
        return false, fmt.Errorf("unpaid count previous2: %w", err)
    }
    return n2 > 0, nil
}

// persist writes the application row and, when the decision granted a
// direct slot, its lottery entry in one transaction.  The entry carries
// no space yet: reserved-category spaces are assigned administratively
// after the period closes.
func (r *Resolver) persist(ctx context.Context, w period.Window, sub Submission, d *Decision) error {
    d.SubmissionToken = uuid.NewString()
    status := model.StatusComplete
    if d.EvidenceRequired {
        status = model.StatusPendingEvidence
    }
    app := &model.Application{
        Period:          w.Current,
        ApplicantID:     sub.ApplicantID,
        Name:            sub.Name,
        Unit:            sub.Unit,
        Plate:           sub.Plate,
        Contact:         sub.Contact,
        Category:        d.Category,
        PlateBound:      d.PlateBound,
        Status:          status,
        SubmissionToken: d.SubmissionToken,
    }
    var entry *model.LotteryEntry
    if d.LotteryEntry {
        entry = &model.LotteryEntry{
            Period:        w.Current,
            ApplicantID:   sub.ApplicantID,
            PaymentStatus: model.PaymentUnpaid,
        }
    }
    if err := r.Store.SaveDecision(ctx, app, entry); err != nil {
        return fmt.Errorf("save decision: %w", err)
    }
    return nil
}

// notify delivers the branch notice best-effort.
func (r *Resolver) notify(ctx context.Context, sub Submission, d *Decision) {
    if r.Notifier == nil {
        return
    }
    if err := r.Notifier.Send(ctx, sub.ApplicantID, sub.Name, d.mailBody, d.mailSubject); err != nil {
        log.Printf("eligibility: notify %s failed: %v", sub.ApplicantID, err)
    }
}
