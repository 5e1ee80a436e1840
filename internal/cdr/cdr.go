// Package cdr writes one call-detail-record line per completed fax call
// to a daily log file, named with a strftime pattern the way the
// teacher's own daily packet log is, via github.com/lestrrat-go/strftime.
package cdr

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Record is one completed (or abandoned) call's summary line.
type Record struct {
	Start          time.Time
	Duration       time.Duration
	RemoteID       string
	PagesConfirmed int
	Result         string // "ok", "failed", "no-answer", ...
}

// Logger appends Records to a directory of daily files named by a
// strftime pattern (default "%Y%m%d.cdr"), opening a new file whenever
// the pattern's expansion changes.
type Logger struct {
	mu      sync.Mutex
	dir     string
	pattern *strftime.Strftime

	curName string
	f       *os.File
}

// Open prepares a Logger writing into dir, naming files per pattern
// (e.g. "%Y%m%d.cdr"). The directory must already exist.
func Open(dir, pattern string) (*Logger, error) {
	p, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("cdr: bad pattern %q: %w", pattern, err)
	}
	return &Logger{dir: dir, pattern: p}, nil
}

// Write appends one formatted CDR line, rolling to a new daily file if
// the pattern's expansion for r.Start differs from the currently open
// file.
func (l *Logger) Write(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.pattern.FormatString(r.Start)
	if name != l.curName || l.f == nil {
		if l.f != nil {
			l.f.Close()
		}
		f, err := os.OpenFile(l.dir+"/"+name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("cdr: open %s: %w", name, err)
		}
		l.f = f
		l.curName = name
	}

	line := fmt.Sprintf("%s\t%s\t%.1fs\t%d\t%s\n",
		r.Start.Format(time.RFC3339), r.RemoteID, r.Duration.Seconds(), r.PagesConfirmed, r.Result)
	_, err := l.f.WriteString(line)
	return err
}

// Close flushes and closes the currently open daily file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
