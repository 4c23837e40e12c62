package output

import (
	"fmt"
	"io"

	"github.com/dshills/skillscan/internal/review"
)

// HintsWriter outputs only the prompt hints, for piping into a model-based
// reviewer.
type HintsWriter struct{}

func (h *HintsWriter) Write(w io.Writer, report *review.Report) error {
	if report.Hints == "" {
		return nil
	}
	if _, err := fmt.Fprint(w, report.Hints); err != nil {
		return fmt.Errorf("writing hints: %w", err)
	}
	return nil
}
