package period

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestCurrentShiftsQuarterForward(t *testing.T) {
    cases := []struct {
        month   int
        quarter int
        year    int // expected Minguo year for calendar year 2024
    }{
        {1, 2, 113}, {2, 2, 113}, {3, 2, 113},
        {4, 3, 113}, {5, 3, 113}, {6, 3, 113},
        {7, 4, 113}, {8, 4, 113}, {9, 4, 113},
        {10, 1, 114}, {11, 1, 114}, {12, 1, 114},
    }
    for _, tc := range cases {
        p, err := Current(2024, tc.month)
        require.NoError(t, err, "month %d", tc.month)
        assert.Equal(t, tc.quarter, p.Quarter, "month %d", tc.month)
        assert.Equal(t, tc.year, p.Year, "month %d", tc.month)
    }
}

func TestCurrentRejectsInvalidMonth(t *testing.T) {
    for _, m := range []int{0, 13, -1, 99} {
        _, err := Current(2024, m)
        assert.ErrorIs(t, err, ErrInvalidMonth, "month %d", m)
    }
}

func TestPreviousStepsBackWithRollback(t *testing.T) {
    p := Period{Year: 113, Quarter: 1}
    assert.Equal(t, Period{Year: 112, Quarter: 4}, p.Previous())

    // composing Previous twice moves exactly two quarters back
    assert.Equal(t, Period{Year: 112, Quarter: 3}, p.Previous().Previous())

    // four steps return to the same quarter one year earlier
    q := Period{Year: 113, Quarter: 3}
    back4 := q.Previous().Previous().Previous().Previous()
    assert.Equal(t, q.Quarter, back4.Quarter)
    assert.Equal(t, q.Year-1, back4.Year)
}

func TestCodeFormat(t *testing.T) {
    assert.Equal(t, "11302", Period{Year: 113, Quarter: 2}.Code())
    assert.Equal(t, "11301", Period{Year: 113, Quarter: 1}.Code())
}

func TestWindowFor(t *testing.T) {
    w := WindowFor(Period{Year: 113, Quarter: 1})
    assert.Equal(t, "11301", w.Current)
    assert.Equal(t, "11204", w.Previous1)
    assert.Equal(t, "11203", w.Previous2)
}

func TestParse(t *testing.T) {
    p, err := Parse("11302")
    require.NoError(t, err)
    assert.Equal(t, Period{Year: 113, Quarter: 2}, p)

    for _, code := range []string{"", "11", "113", "11305", "11300", "abc02", "01302"} {
        _, err := Parse(code)
        assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
    }
}

func TestFromTime(t *testing.T) {
    p := FromTime(time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC))
    assert.Equal(t, Period{Year: 114, Quarter: 1}, p)
}
