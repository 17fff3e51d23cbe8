package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// DocumentStatus is one processed document as the batch summary
// reports it.
type DocumentStatus struct {
	Input    string
	Output   string
	Tables   int
	Warnings int
	Err      error
}

var (
	okStyle   = color.New(color.FgGreen)
	warnStyle = color.New(color.FgYellow)
	failStyle = color.New(color.FgRed, color.Bold)
)

// RenderBatchSummary prints one line per document on stderr and
// returns the number of failed documents.
func RenderBatchSummary(docs []DocumentStatus) int {
	failed := 0
	for _, doc := range docs {
		switch {
		case doc.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", failStyle.Sprint("FAIL"), doc.Input, doc.Err)
		case doc.Warnings > 0:
			fmt.Fprintf(os.Stderr, "%s %s -> %s (%s, %s)\n",
				warnStyle.Sprint("WARN"), doc.Input, doc.Output,
				countNoun(doc.Tables, "table"), countNoun(doc.Warnings, "warning"))
		default:
			fmt.Fprintf(os.Stderr, "%s %s -> %s (%s)\n",
				okStyle.Sprint("OK"), doc.Input, doc.Output,
				countNoun(doc.Tables, "table"))
		}
	}

	total := len(docs)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d documents failed\n", failed, total)
	} else {
		fmt.Fprintf(os.Stderr, "%s processed\n", countNoun(total, "document"))
	}
	return failed
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
