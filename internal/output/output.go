// Package output writes the training artifacts: the appended loss log and
// the whitespace-delimited hidden-state matrix.
package output

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

const defaultBufSize = 64 * 1024 // 64KB

// LossLog appends batch losses to a plaintext file, one line per epoch of
// space-separated values. The file is opened in append mode so successive
// runs extend rather than overwrite it.
type LossLog struct {
	f *os.File
	w *bufio.Writer
}

// NewLossLog opens (or creates) the loss log at path.
func NewLossLog(path string) (*LossLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("output: open loss log %s: %w", path, err)
	}
	return &LossLog{f: f, w: bufio.NewWriterSize(f, defaultBufSize)}, nil
}

// Append writes one epoch's batch losses as a single space-separated line.
func (l *LossLog) Append(losses []float64) error {
	for i, loss := range losses {
		if i > 0 {
			if err := l.w.WriteByte(' '); err != nil {
				return fmt.Errorf("output: loss log write: %w", err)
			}
		}
		if _, err := l.w.WriteString(strconv.FormatFloat(loss, 'g', -1, 64)); err != nil {
			return fmt.Errorf("output: loss log write: %w", err)
		}
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("output: loss log write: %w", err)
	}
	// Flush per epoch so a crash mid-run keeps every completed line.
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("output: loss log flush: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (l *LossLog) Close() error {
	if err := l.w.Flush(); err != nil {
		l.f.Close()
		return fmt.Errorf("output: loss log flush: %w", err)
	}
	return l.f.Close()
}

// WriteStates writes the hidden-state matrix as whitespace-delimited text,
// one row per document in corpus order.
func WriteStates(path string, states *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create states file %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, defaultBufSize)

	rows, cols := states.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					f.Close()
					return fmt.Errorf("output: states write: %w", err)
				}
			}
			if _, err := w.WriteString(strconv.FormatFloat(states.At(i, j), 'g', -1, 64)); err != nil {
				f.Close()
				return fmt.Errorf("output: states write: %w", err)
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("output: states write: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("output: states flush: %w", err)
	}
	return f.Close()
}
