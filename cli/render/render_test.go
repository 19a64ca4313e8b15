package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/floe-data/floe/types"
)

func TestFileLine_Print_NoColorIsPlainText(t *testing.T) {
	var buf bytes.Buffer
	f := NewFileLine(&buf, true)

	f.Print("people", types.FileOutcome{
		FileURI:   "file:///data/in/a.csv",
		Status:    types.FileSuccess,
		RowsTotal: 10,
		Accepted:  9,
		Rejected:  1,
	})

	got := buf.String()
	for _, want := range []string{"people", "file:///data/in/a.csv", "SUCCESS", "rows=10", "accepted=9", "rejected=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestFileLine_Summary(t *testing.T) {
	var buf bytes.Buffer
	f := NewFileLine(&buf, true)

	f.Summary("2026-07-29T14-00-00Z", types.RunFailed)

	got := buf.String()
	if !strings.Contains(got, "2026-07-29T14-00-00Z") || !strings.Contains(got, "FAILED") {
		t.Errorf("got %q, want run id and FAILED status", got)
	}
}
