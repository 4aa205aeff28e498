// Package logger implements a per-case in-memory log buffer.
//
// Detail lines accumulate in a buffer while a case runs. On success the
// buffer is dropped and one short line is printed; on failure the whole
// buffer is replayed before the final error line, so the terminal shows
// full context exactly when something went wrong and stays quiet otherwise.
//
// Thread safety comes from a dedicated logger goroutine fed over a channel;
// there are no mutexes.
package logger

import (
	"bytes"
	"log"
	"strings"
	"time"
)

type action int

const (
	actBegin action = iota
	actAppend
	actSuccess
	actFlushErr
	actDrain
)

type cmd struct {
	act     action
	caseID  string
	message string        // for Append
	label   string        // for Success
	err     error         // for FlushError
	when    time.Time
	done    chan struct{} // for Drain
}

var ch = make(chan cmd, 128) // headroom for bursts

// Begin starts buffering for caseID.
func Begin(caseID string) { ch <- cmd{act: actBegin, caseID: caseID, when: time.Now()} }

// Append adds one detail line to the case buffer.
func Append(caseID, msg string) {
	ch <- cmd{act: actAppend, caseID: caseID, message: msg, when: time.Now()}
}

// Success discards the buffer and prints a single short line.
func Success(caseID, label string) {
	ch <- cmd{act: actSuccess, caseID: caseID, label: label, when: time.Now()}
}

// FlushError replays the buffered lines followed by the final error.
func FlushError(caseID string, err error) {
	ch <- cmd{act: actFlushErr, caseID: caseID, err: err, when: time.Now()}
}

// Drain blocks until every command sent before it has been processed. The
// probe calls it before printing the summary block so case lines cannot
// interleave with the report.
func Drain() {
	done := make(chan struct{})
	ch <- cmd{act: actDrain, done: done, when: time.Now()}
	<-done
}

func init() { go runloop() }

func runloop() {
	buffers := make(map[string]*bytes.Buffer)

	for c := range ch {
		switch c.act {
		case actBegin:
			buffers[c.caseID] = &bytes.Buffer{}

		case actAppend:
			if b := buffers[c.caseID]; b != nil {
				_, _ = b.WriteString(c.message + "\n")
			} else {
				log.Print(c.message) // no buffer, print immediately
			}

		case actSuccess:
			log.Printf("[%-6s] ✔ %s", c.caseID, c.label)
			delete(buffers, c.caseID)

		case actFlushErr:
			if b := buffers[c.caseID]; b != nil {
				lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
				for _, ln := range lines {
					if ln != "" {
						log.Print(ln)
					}
				}
				delete(buffers, c.caseID)
			}
			log.Printf("[%-6s][ERROR] %v", c.caseID, c.err)

		case actDrain:
			close(c.done)
		}
	}
}
