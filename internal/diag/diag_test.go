package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/g5becks/tablenos/internal/diag"
)

func TestCollectorOrderAndWarnings(t *testing.T) {
	var c diag.Collector
	c.Infof(diag.UnknownOption, "unknown key %q", "tablenos-bogus")
	c.Warnf(diag.DuplicateLabel, "duplicate label %q", "tbl:x")

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0].Severity != diag.Info || all[1].Severity != diag.Warning {
		t.Errorf("severities = %v, %v, want Info then Warning", all[0].Severity, all[1].Severity)
	}
	if !c.HasWarnings() {
		t.Error("HasWarnings() = false, want true")
	}
}

func TestPrinterLevels(t *testing.T) {
	color.NoColor = true
	var c diag.Collector
	c.Warnf(diag.UnresolvedReference, "no table with label %q", "tbl:gone")
	c.Infof(diag.UnknownOption, "ignoring %q", "xnos-bogus")

	tests := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		printed := diag.NewPrinter(&buf, tt.level).Print(c.All())
		if printed != tt.want {
			t.Errorf("level %d: printed = %d, want %d", tt.level, printed, tt.want)
		}
	}
}

func TestPrinterFormat(t *testing.T) {
	color.NoColor = true
	var c diag.Collector
	c.Warnf(diag.MalformedAttributes, "bad block in caption")

	var buf bytes.Buffer
	diag.NewPrinter(&buf, 2).WithPrefix("chapter1.md").Print(c.All())

	out := buf.String()
	if !strings.Contains(out, "chapter1.md: warning:") {
		t.Errorf("output missing prefix: %q", out)
	}
	if !strings.Contains(out, "[malformed-attributes]") {
		t.Errorf("output missing kind tag: %q", out)
	}
}
