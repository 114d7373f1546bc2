// Package lottery runs the quarterly draw over the general applicant
// pool: a uniform shuffle of the participants, one open space each in
// inventory order, and numbered waitlist placeholders for everyone who
// missed out.
package lottery

import (
    "context"
    "fmt"
    "math/rand/v2"

    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// Store is the data surface the allocator needs.  SaveEntries must be
// atomic across the whole batch.
type Store interface {
    ListGeneralParticipants(ctx context.Context, periodCode string) ([]model.Application, error)
    ListOpenSpaces(ctx context.Context, periodCode string) ([]string, error)
    CountOpenSpaces(ctx context.Context, periodCode string) (int, error)
    HasDrawResults(ctx context.Context, periodCode string) (bool, error)
    SaveEntries(ctx context.Context, entries []model.LotteryEntry) error
}

// Assignment is one line of a draw outcome.
type Assignment struct {
    SpaceID     string `json:"space_id"`
    Unit        string `json:"unit"`
    Name        string `json:"name"`
    ApplicantID string `json:"applicant_id"`
}

// Outcome is the result of one completed draw.
type Outcome struct {
    Period     string       `json:"period"`
    Assigned   []Assignment `json:"assigned"`
    Waitlisted []Assignment `json:"waitlisted"`
}

// Counts is the pre-flight summary shown before a draw is confirmed.
type Counts struct {
    Participants int `json:"participants"`
    OpenSpaces   int `json:"open_spaces"`
}

// Allocator performs the draw.  The shuffle function is swappable for
// deterministic tests and defaults to the shared PRNG.
type Allocator struct {
    Store   Store
    shuffle func(n int, swap func(i, j int))
}

// NewAllocator returns an Allocator drawing with the default PRNG.
func NewAllocator(store Store) *Allocator {
    return &Allocator{Store: store, shuffle: rand.Shuffle}
}

// Preview returns the participant and open-space counts for the period
// without running the draw.
func (a *Allocator) Preview(ctx context.Context, periodCode string) (Counts, error) {
    participants, err := a.Store.ListGeneralParticipants(ctx, periodCode)
    if err != nil {
        return Counts{}, fmt.Errorf("list participants: %w", err)
    }
    open, err := a.Store.CountOpenSpaces(ctx, periodCode)
    if err != nil {
        return Counts{}, fmt.Errorf("count open spaces: %w", err)
    }
    return Counts{Participants: len(participants), OpenSpaces: open}, nil
}

// Run executes the draw for the period.  It refuses to run twice for
// the same period (repository.ErrAlreadyAllocated); a period with no
// participants is a no-op that writes nothing.  Each participant
// appears exactly once in the outcome, as either an assignment or a
// waitlist placeholder, and the whole batch is persisted atomically.
func (a *Allocator) Run(ctx context.Context, periodCode string) (*Outcome, error) {
    done, err := a.Store.HasDrawResults(ctx, periodCode)
    if err != nil {
        return nil, fmt.Errorf("re-run check: %w", err)
    }
    if done {
        return nil, repository.ErrAlreadyAllocated
    }

    participants, err := a.Store.ListGeneralParticipants(ctx, periodCode)
    if err != nil {
        return nil, fmt.Errorf("list participants: %w", err)
    }
    out := &Outcome{
        Period:     periodCode,
        Assigned:   []Assignment{},
        Waitlisted: []Assignment{},
    }
    if len(participants) == 0 {
        return out, nil
    }

    spaces, err := a.Store.ListOpenSpaces(ctx, periodCode)
    if err != nil {
        return nil, fmt.Errorf("list open spaces: %w", err)
    }

    a.shuffle(len(participants), func(i, j int) {
        participants[i], participants[j] = participants[j], participants[i]
    })

    entries := make([]model.LotteryEntry, 0, len(participants))
    for i, p := range participants {
        var spaceID string
        if i < len(spaces) {
            spaceID = spaces[i]
        } else {
            spaceID = fmt.Sprintf("%s%d", model.WaitlistPrefix, i-len(spaces)+1)
        }
        entries = append(entries, model.LotteryEntry{
            Period:        periodCode,
            ApplicantID:   p.ApplicantID,
            SpaceID:       spaceID,
            PaymentStatus: model.PaymentUnpaid,
        })
        line := Assignment{
            SpaceID:     spaceID,
            Unit:        p.Unit,
            Name:        p.Name,
            ApplicantID: p.ApplicantID,
        }
        if i < len(spaces) {
            out.Assigned = append(out.Assigned, line)
        } else {
            out.Waitlisted = append(out.Waitlisted, line)
        }
    }

    if err := a.Store.SaveEntries(ctx, entries); err != nil {
        return nil, fmt.Errorf("save entries: %w", err)
    }
    return out, nil
}

// MaskName blanks the second character of a display name for
// publication, e.g. 王小明 becomes 王○明.
func MaskName(name string) string {
    r := []rune(name)
    if len(r) == 0 {
        return ""
    }
    if len(r) <= 2 {
        return string(r[0]) + "○"
    }
    return string(r[0]) + "○" + string(r[2:])
}
