// Package report renders the published lottery results: the official
// title line and a CSV export of the assignment table.
package report

import (
    "encoding/csv"
    "fmt"
    "io"

    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// Title returns the official heading for a period's published results.
func Title(p period.Period) string {
    return fmt.Sprintf("總管理處%d年第%d期地下停車場員工自用車停車位抽籤結果", p.Year, p.Quarter)
}

// WriteCSV streams the result rows as CSV with the columns of the
// printed notice.  Rows are written as given; the caller masks names
// before export.  A UTF-8 BOM is prepended so the file opens correctly
// in Excel, where the facilities staff read it.
func WriteCSV(w io.Writer, rows []repository.ResultRow) error {
    if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
        return err
    }
    cw := csv.NewWriter(w)
    if err := cw.Write([]string{"單位", "姓名", "車位號碼"}); err != nil {
        return err
    }
    for _, r := range rows {
        if err := cw.Write([]string{r.Unit, r.Name, r.SpaceID}); err != nil {
            return err
        }
    }
    cw.Flush()
    return cw.Error()
}
