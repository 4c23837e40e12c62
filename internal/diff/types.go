package diff

// FileStatus describes how a file changed between the two sides of a diff.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
	StatusCopied   FileStatus = "copied"
)

// LineType tags a hunk line as added, removed or unchanged.
type LineType string

const (
	LineAddition LineType = "addition"
	LineDeletion LineType = "deletion"
	LineContext  LineType = "context"
)

// Line is a single hunk line with its +/-/space marker stripped.
type Line struct {
	Type    LineType `json:"type"`
	Content string   `json:"content"`
}

// Hunk is a contiguous region of change within one file.
type Hunk struct {
	OldStart int    `json:"oldStart"`
	OldCount int    `json:"oldCount"`
	NewStart int    `json:"newStart"`
	NewCount int    `json:"newCount"`
	Lines    []Line `json:"lines"`
}

// File is one file touched by a diff.
type File struct {
	Path     string     `json:"path"`
	Status   FileStatus `json:"status"`
	Hunks    []Hunk     `json:"hunks"`
	Language string     `json:"language,omitempty"`
}

// Additions returns the number of added lines across all hunks.
func (f File) Additions() int {
	return f.count(LineAddition)
}

// Deletions returns the number of removed lines across all hunks.
func (f File) Deletions() int {
	return f.count(LineDeletion)
}

func (f File) count(t LineType) int {
	n := 0
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Type == t {
				n++
			}
		}
	}
	return n
}

// ParsedDiff is the structured form of a unified diff. Files keep the order
// in which they first appear in the source text.
type ParsedDiff struct {
	Files []File `json:"files"`
}

// Additions returns the total number of added lines in the diff.
func (d *ParsedDiff) Additions() int {
	n := 0
	for _, f := range d.Files {
		n += f.Additions()
	}
	return n
}

// Deletions returns the total number of removed lines in the diff.
func (d *ParsedDiff) Deletions() int {
	n := 0
	for _, f := range d.Files {
		n += f.Deletions()
	}
	return n
}

// Paths returns the file paths in diff order.
func (d *ParsedDiff) Paths() []string {
	paths := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Languages returns the distinct detected languages in diff order.
func (d *ParsedDiff) Languages() []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range d.Files {
		if f.Language != "" && !seen[f.Language] {
			seen[f.Language] = true
			langs = append(langs, f.Language)
		}
	}
	return langs
}
