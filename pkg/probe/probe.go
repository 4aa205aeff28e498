// Package probe drives the NULL-binding reproduction scenario: prepare a
// throwaway table, run a fixed sequence of parameterized inserts that vary
// which bound values are absent, read back what actually persisted, and
// tear the table down again. Each insert is guarded on its own so a driver
// that rejects absent binds still lets the remaining cases run and the
// whole sequence can be compared in one invocation.
package probe

import (
	"context"
	"fmt"
	"log"
	"time"

	"nullbind-probe/pkg/database"
	"nullbind-probe/pkg/logger"
)

// Case describes one guarded insert attempt. Name and Email are optional on
// purpose: nil is the "absent value" whose transport as SQL NULL is the
// behaviour under study.
type Case struct {
	ID    string  // short tag used in log lines, e.g. "A"
	Label string  // human description for the report
	Name  *string
	Email *string
}

// Text returns a pointer to s. It keeps scenario literals readable when
// mixing present and absent values.
func Text(s string) *string { return &s }

// DefaultScenario mirrors the original reproduction: both values present,
// one absent, both absent.
func DefaultScenario() []Case {
	return []Case{
		{ID: "A", Label: "insert with both values present", Name: Text("Alice"), Email: Text("alice@example.com")},
		{ID: "B", Label: "insert with one absent value", Name: Text("Bob"), Email: nil},
		{ID: "C", Label: "insert with both values absent", Name: nil, Email: nil},
	}
}

// CaseResult records what happened to a single case.
type CaseResult struct {
	Case   string `json:"case"`
	Label  string `json:"label"`
	Status string `json:"status"` // ok | error
	RowID  int64  `json:"rowID,omitempty"`
	Copied int64  `json:"copied,omitempty"`
	Error  string `json:"error,omitempty"`
	Class  string `json:"errorClass,omitempty"`
}

// Report is the outcome of one full run: per-case results, the rows that
// actually persisted, and summary counters. It marshals to JSON unchanged
// for the optional report endpoint.
type Report struct {
	Status        string             `json:"status"` // ok | mixed | error
	Cases         []CaseResult       `json:"cases"`
	Rows          []database.Contact `json:"rows"`
	Inserted      int                `json:"inserted"`
	Failed        int                `json:"failed"`
	ReadBackError string             `json:"readBackError,omitempty"`
}

// Runner executes the scenario against one open database.
type Runner struct {
	DB       *database.Database
	Cases    []Case // nil means DefaultScenario
	WithCopy bool   // append the COPY-path batch case after the bind cases
}

// Run executes the scenario. Schema preparation failures are fatal and
// returned to the caller; individual case failures are not. The fixture
// table is dropped on every exit path, including errors during read-back.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cases := r.Cases
	if cases == nil {
		cases = DefaultScenario()
	}

	if err := r.DB.PrepareSchema(ctx); err != nil {
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	// Teardown must happen even when the run context is already cancelled,
	// so the drop runs on a short detached context.
	defer func() {
		dropCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.DB.DropSchema(dropCtx); err != nil {
			log.Printf("teardown: %v", err)
		}
	}()

	report := &Report{Cases: make([]CaseResult, 0, len(cases)+1)}

	for _, c := range cases {
		report.record(r.runCase(ctx, c))
	}
	if r.WithCopy {
		report.record(r.runCopyCase(ctx))
	}

	rows, err := r.DB.ReadBack(ctx)
	if err != nil {
		// A broken read-back leaves the per-case verdicts standing; report
		// it alongside instead of abandoning them.
		report.ReadBackError = err.Error()
	}
	report.Rows = rows

	switch {
	case report.Failed == 0 && report.ReadBackError == "":
		report.Status = "ok"
	case report.Inserted == 0:
		report.Status = "error"
	default:
		report.Status = "mixed"
	}

	// Let buffered case lines reach the terminal before anyone prints the
	// summary block.
	logger.Drain()

	return report, nil
}

// record folds one case outcome into the summary counters.
func (rep *Report) record(res CaseResult) {
	rep.Cases = append(rep.Cases, res)
	if res.Status == "ok" {
		rep.Inserted++
	} else {
		rep.Failed++
	}
}

// runCase performs one guarded parameterized insert.
func (r *Runner) runCase(ctx context.Context, c Case) CaseResult {
	logger.Begin(c.ID)
	logger.Append(c.ID, fmt.Sprintf("[%-6s] ▶ %s", c.ID, c.Label))
	logger.Append(c.ID, fmt.Sprintf("[%-6s] binding name=%s email=%s", c.ID, describe(c.Name), describe(c.Email)))

	res := CaseResult{Case: c.ID, Label: c.Label}

	id, err := r.DB.InsertContact(ctx, c.Name, c.Email)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		res.Class = database.ClassifyError(err)
		logger.FlushError(c.ID, err)
		return res
	}

	res.Status = "ok"
	res.RowID = id
	logger.Success(c.ID, c.Label)
	return res
}

// runCopyCase pushes a small batch containing absent values through the bulk
// path (COPY on PostgreSQL) as a control for the bind-path cases.
func (r *Runner) runCopyCase(ctx context.Context) CaseResult {
	const id = "COPY"
	label := "batch insert with absent values (bulk path)"

	logger.Begin(id)
	logger.Append(id, fmt.Sprintf("[%-6s] ▶ %s", id, label))

	res := CaseResult{Case: id, Label: label}

	batch := [][2]*string{
		{Text("Dana"), nil},
		{nil, Text("erin@example.com")},
	}
	n, err := r.DB.BulkInsertContacts(ctx, batch)
	if err != nil {
		res.Status = "error"
		res.Copied = n
		res.Error = err.Error()
		res.Class = database.ClassifyError(err)
		logger.FlushError(id, err)
		return res
	}

	res.Status = "ok"
	res.Copied = n
	logger.Success(id, fmt.Sprintf("%s (%d rows)", label, n))
	return res
}

// describe renders an optional value for log lines without confusing an
// absent value with the literal string "NULL".
func describe(s *string) string {
	if s == nil {
		return "<absent>"
	}
	return fmt.Sprintf("%q", *s)
}
