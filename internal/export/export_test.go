package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/rp-shift-tracker/internal/export"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

func sampleReport() export.Report {
	win := timecalc.WeekOf(time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local), time.Monday)
	mon := win.Start
	tue := mon.AddDate(0, 0, 1)
	shift := func(start time.Time, d time.Duration) model.Shift {
		return model.Shift{Start: start, End: start.Add(d), DurationSeconds: int64(d / time.Second)}
	}
	return export.Report{
		Window:      win,
		Departments: []string{"Sales", "R&D, Lab"},
		Shifts: []model.Shift{
			shift(mon.Add(9*time.Hour), 3*time.Hour),
			shift(mon.Add(13*time.Hour), 4*time.Hour+30*time.Minute),
			shift(tue.Add(8*time.Hour), 90*time.Second),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"csv", export.FormatCSV, false},
		{" JSON ", export.FormatJSON, false},
		{"md", export.FormatMarkdown, false},
		{"markdown", export.FormatMarkdown, false},
		{"xlsx", export.FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTotalSeconds(t *testing.T) {
	assert.Equal(t, int64(3*3600+4*3600+1800+90), sampleReport().TotalSeconds())
	assert.Zero(t, export.Report{}.TotalSeconds())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, sampleReport(), export.FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"date", "day", "start", "end", "duration_seconds", "duration"}, records[0])
	assert.Equal(t, []string{"2024-01-01", "Mon", "09:00:00", "12:00:00", "10800", "03:00:00"}, records[1])
	assert.Equal(t, []string{"2024-01-02", "Tue", "08:00:00", "08:01:30", "90", "00:01:30"}, records[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, sampleReport(), export.FormatJSON))

	var got struct {
		Label        string        `json:"label"`
		Departments  []string      `json:"departments"`
		Shifts       []model.Shift `json:"shifts"`
		TotalSeconds int64         `json:"total_seconds"`
		Total        string        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-01-01 (Mon) - 2024-01-07 (Sun)", got.Label)
	assert.Equal(t, []string{"Sales", "R&D, Lab"}, got.Departments)
	assert.Len(t, got.Shifts, 3)
	assert.Equal(t, int64(27090), got.TotalSeconds)
	assert.Equal(t, "07:31:30", got.Total)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := export.Report{Window: timecalc.WeekOf(time.Now(), time.Monday)}
	require.NoError(t, export.Write(&buf, r, export.FormatJSON))
	assert.Contains(t, buf.String(), `"shifts": []`)
	assert.Contains(t, buf.String(), `"total": "00:00:00"`)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, sampleReport(), export.FormatMarkdown))
	out := buf.String()

	assert.Contains(t, out, "## Week 2024-01-01 (Mon) - 2024-01-07 (Sun)")
	assert.Contains(t, out, "Departments: Sales, R&D, Lab")
	assert.Contains(t, out, "| Mon 2024-01-01 | 09:00:00 | 12:00:00 | 03:00:00 |")
	assert.Contains(t, out, "|  | 13:00:00 | 17:30:00 | 04:30:00 |")
	assert.Contains(t, out, "| Tue 2024-01-02 | 08:00:00 | 08:01:30 | 00:01:30 |")
	assert.True(t, strings.HasSuffix(out, "| **Total** | | | **07:31:30** |\n"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, sampleReport(), export.FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"date", "day", "start", "end", "duration_seconds", "duration"}, rows[0])
	assert.Equal(t, "2024-01-01", rows[1][0])
	assert.Equal(t, "10800", rows[1][4])
	assert.Equal(t, "total", rows[4][0])
	assert.Equal(t, "27090", rows[4][4])
	assert.Equal(t, "07:31:30", rows[4][5])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, export.Write(&buf, sampleReport(), export.Format("pdf")))
}
