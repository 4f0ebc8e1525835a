package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/util"
)

// StampLayout is appended to output names by StampedPath
const StampLayout = "20060102_150405"

// ErrLocked is returned when another process is writing the same output
var ErrLocked = errors.New("output is locked by another process")

// OutputWriteError reports an output file that could not be created or written
type OutputWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// IsOutputWrite reports whether err is an OutputWriteError
func IsOutputWrite(err error) bool {
	var e *OutputWriteError
	return errors.As(err, &e)
}

// Writer streams records to a CSV file. Every row is flushed as soon as it
// is written so that a later failure leaves all earlier rows on disk.
type Writer struct {
	path    string
	variant domain.Variant
	file    *os.File
	csv     *csv.Writer
	lock    *flock.Flock
	rows    int
}

// Create locks path, truncates it and writes the header row for variant
func Create(path string, variant domain.Variant) (*Writer, error) {
	if err := util.EnsureParentDir(path); err != nil {
		return nil, &OutputWriteError{Path: path, Op: "creating directory for", Err: err}
	}

	lock := flock.New(lockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &OutputWriteError{Path: path, Op: "locking", Err: err}
	}
	if !locked {
		return nil, &OutputWriteError{Path: path, Op: "locking", Err: ErrLocked}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &OutputWriteError{Path: path, Op: "creating", Err: errors.Join(err, lock.Unlock())}
	}

	w := &Writer{
		path:    path,
		variant: variant,
		file:    f,
		csv:     csv.NewWriter(f),
		lock:    lock,
	}

	if err := w.writeRow(variant.Columns()); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the output file path
func (w *Writer) Path() string { return w.path }

// Rows returns the number of data rows written
func (w *Writer) Rows() int { return w.rows }

// Write appends one record
func (w *Writer) Write(rec domain.Record) error {
	if err := w.writeRow(rec.Row(w.variant)); err != nil {
		return err
	}
	w.rows++
	return nil
}

func (w *Writer) writeRow(row []string) error {
	if w.csv == nil {
		return &OutputWriteError{Path: w.path, Op: "writing", Err: os.ErrClosed}
	}
	if err := w.csv.Write(row); err != nil {
		return &OutputWriteError{Path: w.path, Op: "writing", Err: err}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return &OutputWriteError{Path: w.path, Op: "writing", Err: err}
	}
	return nil
}

// Close syncs and closes the file and releases the lock. The lock file is
// left in place: unlinking it would let two runs hold locks on different
// inodes. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.csv == nil {
		return nil
	}

	w.csv.Flush()
	err := w.csv.Error()
	if serr := w.file.Sync(); err == nil {
		err = serr
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.csv = nil
	if uerr := w.lock.Unlock(); err == nil {
		err = uerr
	}

	if err != nil {
		return &OutputWriteError{Path: w.path, Op: "closing", Err: err}
	}
	return nil
}

// StampedPath inserts _YYYYMMDD_HHMMSS before the extension of path
func StampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + t.Format(StampLayout) + ext
}

func lockPath(path string) string {
	return path + ".lock"
}
