package report

import (
    "bytes"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

func TestTitle(t *testing.T) {
    got := Title(period.Period{Year: 113, Quarter: 2})
    assert.Equal(t, "總管理處113年第2期地下停車場員工自用車停車位抽籤結果", got)
}

func TestWriteCSV(t *testing.T) {
    rows := []repository.ResultRow{
        {SpaceID: "B1-01", Unit: "資訊處", Name: "王○明"},
        {SpaceID: "備取1", Unit: "秘書處", Name: "李○"},
    }
    var buf bytes.Buffer
    require.NoError(t, WriteCSV(&buf, rows))

    out := buf.String()
    assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "missing BOM")

    lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
    require.Len(t, lines, 3)
    assert.Equal(t, "單位,姓名,車位號碼", lines[0])
    assert.Equal(t, "資訊處,王○明,B1-01", lines[1])
    assert.Equal(t, "秘書處,李○,備取1", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
    var buf bytes.Buffer
    require.NoError(t, WriteCSV(&buf, nil))
    lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")), "\n")
    assert.Len(t, lines, 1, "header only")
}
