package probe

import (
	"fmt"
	"io"
	"strings"
)

// PrintText renders the report the way the terminal user reads it: one
// verdict line per case, the persisted rows, then a summary block. All
// diagnostics are plain text; there is no machine-readable variant here
// (the JSON endpoint serves that need).
func (rep *Report) PrintText(w io.Writer) {
	for _, c := range rep.Cases {
		if c.Status == "ok" {
			if c.Copied > 0 {
				fmt.Fprintf(w, "✓ case %s: %s (%d rows)\n", c.Case, c.Label, c.Copied)
			} else {
				fmt.Fprintf(w, "✓ case %s: %s (id=%d)\n", c.Case, c.Label, c.RowID)
			}
			continue
		}
		fmt.Fprintf(w, "✗ case %s: %s\n", c.Case, c.Label)
		fmt.Fprintf(w, "    error: %s\n", c.Error)
		fmt.Fprintf(w, "    class: %s\n", c.Class)
	}

	fmt.Fprintln(w, "\n--- current table contents ---")
	for _, row := range rep.Rows {
		fmt.Fprintf(w, "  id=%d name=%s email=%s\n", row.ID, describe(row.Name), describe(row.Email))
	}
	if rep.ReadBackError != "" {
		fmt.Fprintf(w, "  read-back failed: %s\n", rep.ReadBackError)
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintf(w, "SUMMARY: status=%s inserted=%d failed=%d rows=%d\n",
		rep.Status, rep.Inserted, rep.Failed, len(rep.Rows))
	if rep.Failed > 0 {
		fmt.Fprintln(w, "Absent bound parameters were rejected instead of arriving as column NULLs.")
	} else {
		fmt.Fprintln(w, "Absent bound parameters arrived as column NULLs.")
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
