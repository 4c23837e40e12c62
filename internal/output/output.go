package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dshills/skillscan/internal/review"
	"github.com/dshills/skillscan/internal/skill"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "markdown", "sarif", "hints"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	case "hints":
		return &HintsWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is empty.
func WriteReport(report *review.Report, format, outPath string, stdout io.Writer) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	if outPath == "" {
		return writer.Write(stdout, report)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// severityOrder lists severities from most to least severe.
var severityOrder = []skill.Severity{skill.SeverityCritical, skill.SeverityWarning, skill.SeverityInfo}

// groupBySeverity buckets findings by severity, sorted by path then line
// within each bucket.
func groupBySeverity(findings []review.Finding) map[skill.Severity][]review.Finding {
	m := make(map[skill.Severity][]review.Finding)
	for _, f := range findings {
		m[f.Severity] = append(m[f.Severity], f)
	}
	for _, fs := range m {
		sort.SliceStable(fs, func(i, j int) bool {
			if fs[i].Path != fs[j].Path {
				return fs[i].Path < fs[j].Path
			}
			return fs[i].Line < fs[j].Line
		})
	}
	return m
}

func location(f review.Finding) string {
	if f.Path == "" {
		return "(no location)"
	}
	if f.Line <= 0 {
		return f.Path
	}
	return fmt.Sprintf("%s:%d", f.Path, f.Line)
}
