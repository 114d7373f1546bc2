package lottery

import (
    "context"
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

type fakeStore struct {
    participants []model.Application
    spaces       []string
    drawDone     bool
    saved        []model.LotteryEntry
    saveCalls    int
}

func (f *fakeStore) ListGeneralParticipants(ctx context.Context, periodCode string) ([]model.Application, error) {
    return f.participants, nil
}

func (f *fakeStore) ListOpenSpaces(ctx context.Context, periodCode string) ([]string, error) {
    return f.spaces, nil
}

func (f *fakeStore) CountOpenSpaces(ctx context.Context, periodCode string) (int, error) {
    return len(f.spaces), nil
}

func (f *fakeStore) HasDrawResults(ctx context.Context, periodCode string) (bool, error) {
    return f.drawDone, nil
}

func (f *fakeStore) SaveEntries(ctx context.Context, entries []model.LotteryEntry) error {
    f.saveCalls++
    f.saved = entries
    return nil
}

// identity shuffle keeps input order so outcomes are predictable
func noShuffle(n int, swap func(i, j int)) {}

func newTestAllocator(store *fakeStore) *Allocator {
    return &Allocator{Store: store, shuffle: noShuffle}
}

func applicants(n int) []model.Application {
    out := make([]model.Application, 0, n)
    for i := 0; i < n; i++ {
        out = append(out, model.Application{
            ApplicantID: fmt.Sprintf("10%04d", i),
            Name:        fmt.Sprintf("員工%d", i),
            Unit:        "資訊處",
        })
    }
    return out
}

func TestRunAssignsAndWaitlists(t *testing.T) {
    store := &fakeStore{
        participants: applicants(5),
        spaces:       []string{"B1-01", "B1-02", "B1-03"},
    }
    out, err := newTestAllocator(store).Run(context.Background(), "11302")
    require.NoError(t, err)

    assert.Len(t, out.Assigned, 3)
    assert.Len(t, out.Waitlisted, 2)
    assert.Equal(t, "B1-01", out.Assigned[0].SpaceID)
    assert.Equal(t, "備取1", out.Waitlisted[0].SpaceID)
    assert.Equal(t, "備取2", out.Waitlisted[1].SpaceID)

    require.Len(t, store.saved, 5)
    seen := map[string]bool{}
    for _, e := range store.saved {
        assert.Equal(t, "11302", e.Period)
        assert.Equal(t, model.PaymentUnpaid, e.PaymentStatus)
        assert.False(t, seen[e.ApplicantID], "applicant appears twice")
        seen[e.ApplicantID] = true
    }
    assert.Equal(t, 1, store.saveCalls, "batch must be written once")
}

func TestRunZeroParticipants(t *testing.T) {
    store := &fakeStore{spaces: []string{"B1-01"}}
    out, err := newTestAllocator(store).Run(context.Background(), "11302")
    require.NoError(t, err)

    assert.Empty(t, out.Assigned)
    assert.Empty(t, out.Waitlisted)
    assert.Zero(t, store.saveCalls, "no writes for an empty pool")
}

func TestRunZeroSpacesWaitlistsEveryone(t *testing.T) {
    store := &fakeStore{participants: applicants(3)}
    out, err := newTestAllocator(store).Run(context.Background(), "11302")
    require.NoError(t, err)

    assert.Empty(t, out.Assigned)
    require.Len(t, out.Waitlisted, 3)
    assert.Equal(t, "備取1", out.Waitlisted[0].SpaceID)
    assert.Equal(t, "備取3", out.Waitlisted[2].SpaceID)
}

func TestRunRefusesSecondDraw(t *testing.T) {
    store := &fakeStore{participants: applicants(2), drawDone: true}
    _, err := newTestAllocator(store).Run(context.Background(), "11302")
    assert.ErrorIs(t, err, repository.ErrAlreadyAllocated)
    assert.Zero(t, store.saveCalls)
}

func TestRunShufflesPool(t *testing.T) {
    store := &fakeStore{
        participants: applicants(4),
        spaces:       []string{"B1-01", "B1-02", "B1-03", "B1-04"},
    }
    a := &Allocator{Store: store, shuffle: func(n int, swap func(i, j int)) {
        // reverse, to prove the permutation flows through to spaces
        for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
            swap(i, j)
        }
    }}
    out, err := a.Run(context.Background(), "11302")
    require.NoError(t, err)

    assert.Equal(t, "100003", out.Assigned[0].ApplicantID)
    assert.Equal(t, "B1-01", out.Assigned[0].SpaceID)
    assert.Equal(t, "100000", out.Assigned[3].ApplicantID)
}

func TestPreview(t *testing.T) {
    store := &fakeStore{participants: applicants(7), spaces: []string{"B1-01", "B1-02"}}
    counts, err := newTestAllocator(store).Preview(context.Background(), "11302")
    require.NoError(t, err)
    assert.Equal(t, Counts{Participants: 7, OpenSpaces: 2}, counts)
}

func TestMaskName(t *testing.T) {
    cases := []struct{ in, want string }{
        {"王小明", "王○明"},
        {"歐陽小小", "歐○小小"},
        {"王明", "王○"},
        {"王", "王○"},
        {"", ""},
    }
    for _, c := range cases {
        assert.Equal(t, c.want, MaskName(c.in), "mask %q", c.in)
    }
}
