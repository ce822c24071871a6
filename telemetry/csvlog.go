// SPDX-License-Identifier: MIT

package telemetry

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// CSVLog writes the per-round summary table:
//
//	Round,Time,Best Stakeholder,Best Fitness,<name 1>,<name 2>,...
//
// Fitness columns hold costs under the coordinator's matrix; a stakeholder
// without a result yet gets an empty cell.
type CSVLog struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
}

// NewCSVLog writes to w. The caller keeps ownership of w.
func NewCSVLog(w io.Writer) *CSVLog {
	return &CSVLog{w: csv.NewWriter(w)}
}

// CreateCSVLog creates (or truncates) the file at path.
func CreateCSVLog(path string) (*CSVLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &CSVLog{w: csv.NewWriter(f), closer: f}, nil
}

// Header writes the column names for the given stakeholders.
func (l *CSVLog) Header(names []string) error {
	rec := append([]string{"Round", "Time", "Best Stakeholder", "Best Fitness"}, names...)

	return l.write(rec)
}

// Row writes one round. costs[i] belongs to the i-th name given to Header;
// a nil entry is written as an empty cell.
func (l *CSVLog) Row(round int, at time.Time, best string, bestCost float64, costs []*float64) error {
	rec := make([]string, 0, 4+len(costs))
	rec = append(rec,
		strconv.Itoa(round),
		at.Format(time.RFC3339Nano),
		best,
		strconv.FormatFloat(bestCost, 'g', -1, 64),
	)
	for _, c := range costs {
		if c == nil {
			rec = append(rec, "")
			continue
		}
		rec = append(rec, strconv.FormatFloat(*c, 'g', -1, 64))
	}

	return l.write(rec)
}

func (l *CSVLog) write(rec []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Write(rec); err != nil {
		return err
	}
	l.w.Flush()

	return l.w.Error()
}

// Close flushes and, for logs made by CreateCSVLog, closes the file.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	if l.closer != nil {
		return l.closer.Close()
	}

	return nil
}
