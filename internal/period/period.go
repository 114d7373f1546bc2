// Package period maps calendar dates to the administrative parking
// quarters used as the sharding key for every per-cycle record.  The
// administrative cycle runs one quarter ahead of the calendar: forms
// submitted during a calendar quarter apply to the next allocation
// period, so January–March belongs to quarter 2 of the same year and
// October–December rolls into quarter 1 of the following year.  Years
// are expressed in the Minguo calendar (calendar year minus 1911) to
// stay compatible with the period codes already in the database.
package period

import (
    "errors"
    "fmt"
    "time"
)

// minguoOffset converts a Gregorian year to the Minguo year used in
// period codes.  This is a formatting convention, not a domain rule.
const minguoOffset = 1911

// ErrInvalidMonth is returned when the month falls outside 1..12.
// Callers must treat it as fatal and not derive period codes from it.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Period identifies one allocation cycle as a fiscal (Minguo) year and
// a quarter number in 1..4.
type Period struct {
    Year    int // Minguo year
    Quarter int // 1..4
}

// Current computes the allocation period that applications submitted in
// the given calendar year/month belong to.  The quarter is shifted one
// ahead of the calendar quarter and the year advances at the
// October–December boundary.
func Current(year, month int) (Period, error) {
    switch {
    case month >= 1 && month <= 3:
        return Period{Year: year - minguoOffset, Quarter: 2}, nil
    case month >= 4 && month <= 6:
        return Period{Year: year - minguoOffset, Quarter: 3}, nil
    case month >= 7 && month <= 9:
        return Period{Year: year - minguoOffset, Quarter: 4}, nil
    case month >= 10 && month <= 12:
        return Period{Year: year + 1 - minguoOffset, Quarter: 1}, nil
    default:
        return Period{}, ErrInvalidMonth
    }
}

// FromTime is a convenience wrapper around Current for callers holding
// a time.Time.  time.Month is always in range, so the error is
// discarded.
func FromTime(t time.Time) Period {
    p, _ := Current(t.Year(), int(t.Month()))
    return p
}

// Previous returns the period one quarter behind p, rolling the year
// back when stepping over the Q1 boundary.
func (p Period) Previous() Period {
    if p.Quarter == 1 {
        return Period{Year: p.Year - 1, Quarter: 4}
    }
    return Period{Year: p.Year, Quarter: p.Quarter - 1}
}

// Code renders the period as the wire format used across all tables:
// the Minguo year followed by the zero-padded quarter, e.g. "11302".
func (p Period) Code() string {
    return fmt.Sprintf("%d%02d", p.Year, p.Quarter)
}

// ErrInvalidCode is returned by Parse for malformed period codes.
var ErrInvalidCode = errors.New("malformed period code")

// Parse decodes a wire-format period code back into a Period.  The last
// two digits are the quarter, everything before them the Minguo year.
func Parse(code string) (Period, error) {
    if len(code) < 3 {
        return Period{}, ErrInvalidCode
    }
    var year, quarter int
    if _, err := fmt.Sscanf(code[:len(code)-2], "%d", &year); err != nil {
        return Period{}, ErrInvalidCode
    }
    if _, err := fmt.Sscanf(code[len(code)-2:], "%d", &quarter); err != nil {
        return Period{}, ErrInvalidCode
    }
    p := Period{Year: year, Quarter: quarter}
    if year <= 0 || quarter < 1 || quarter > 4 || p.Code() != code {
        return Period{}, ErrInvalidCode
    }
    return p, nil
}

// Window bundles the current period code with the two preceding codes.
// The eligibility rules only ever look two quarters back.
type Window struct {
    Current   string
    Previous1 string
    Previous2 string
}

// WindowFor computes the three period codes the resolver needs.
func WindowFor(p Period) Window {
    prev1 := p.Previous()
    return Window{
        Current:   p.Code(),
        Previous1: prev1.Code(),
        Previous2: prev1.Previous().Code(),
    }
}
