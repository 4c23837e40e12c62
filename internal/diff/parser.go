package diff

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts unified diff text into a ParsedDiff. It never fails:
// text outside a recognized file or hunk is dropped, and malformed hunk
// lines are kept as context. An empty line inside a hunk counts as a
// context line while both sides still expect lines, since editors often
// strip the leading space.
func Parse(text string) *ParsedDiff {
	p := &parser{
		result: &ParsedDiff{},
		index:  make(map[string]int),
	}
	for _, line := range strings.Split(text, "\n") {
		p.consume(strings.TrimSuffix(line, "\r"))
	}
	p.flushFile()

	for i := range p.result.Files {
		p.result.Files[i].Language = DetectLanguage(p.result.Files[i].Path)
	}
	return p.result
}

// parser holds the cursor state for a single Parse call.
type parser struct {
	result *ParsedDiff
	index  map[string]int // path -> position in result.Files

	file *File
	hunk *Hunk

	// Lines still expected by the current hunk header. While either is
	// positive the parser is inside a hunk body and header-looking lines
	// are treated as content.
	oldLeft int
	newLeft int
}

func (p *parser) consume(line string) {
	switch {
	case strings.HasPrefix(line, "diff --git "):
		p.startFile(line)
		return
	case strings.HasPrefix(line, "@@"):
		p.startHunk(line)
		return
	case p.inBody():
		p.addLine(line)
		return
	}

	if p.file == nil {
		return
	}

	switch {
	case strings.HasPrefix(line, "new file mode"):
		p.file.Status = StatusAdded
	case strings.HasPrefix(line, "deleted file mode"):
		p.file.Status = StatusDeleted
	case strings.HasPrefix(line, "rename from"), strings.HasPrefix(line, "rename to"):
		p.file.Status = StatusRenamed
	case strings.HasPrefix(line, "copy from"), strings.HasPrefix(line, "copy to"):
		p.file.Status = StatusCopied
	case strings.HasPrefix(line, "+++"):
		if p.file.Path == "" {
			p.file.Path = pathFromMarker(strings.TrimSpace(strings.TrimPrefix(line, "+++")))
		}
	case strings.HasPrefix(line, "index "), strings.HasPrefix(line, "---"):
	default:
		if p.hunk != nil {
			p.addLine(line)
		}
	}
}

func (p *parser) inBody() bool {
	return p.hunk != nil && (p.oldLeft > 0 || p.newLeft > 0)
}

func (p *parser) startFile(header string) {
	p.flushFile()
	p.file = &File{
		Path:   pathFromHeader(header),
		Status: StatusModified,
	}
}

func (p *parser) startHunk(header string) {
	p.flushHunk()
	if p.file == nil {
		return
	}
	m := hunkHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return
	}
	h := &Hunk{
		OldStart: atoi(m[1], 0),
		OldCount: atoi(m[2], 1),
		NewStart: atoi(m[3], 0),
		NewCount: atoi(m[4], 1),
	}
	p.hunk = h
	p.oldLeft = h.OldCount
	p.newLeft = h.NewCount
}

func (p *parser) addLine(line string) {
	if line == "" {
		// Editors commonly strip the single space marker from empty
		// context lines; only accept one while both sides still expect it.
		if p.oldLeft > 0 && p.newLeft > 0 {
			p.appendLine(LineContext, "")
		}
		return
	}
	switch line[0] {
	case '+':
		p.appendLine(LineAddition, line[1:])
	case '-':
		p.appendLine(LineDeletion, line[1:])
	case ' ':
		p.appendLine(LineContext, line[1:])
	case '\\':
		// "\ No newline at end of file"
	default:
		p.appendLine(LineContext, line)
	}
}

func (p *parser) appendLine(t LineType, content string) {
	p.hunk.Lines = append(p.hunk.Lines, Line{Type: t, Content: content})
	switch t {
	case LineAddition:
		p.newLeft = decr(p.newLeft)
	case LineDeletion:
		p.oldLeft = decr(p.oldLeft)
	default:
		p.oldLeft = decr(p.oldLeft)
		p.newLeft = decr(p.newLeft)
	}
}

func (p *parser) flushHunk() {
	if p.hunk != nil && p.file != nil {
		p.file.Hunks = append(p.file.Hunks, *p.hunk)
	}
	p.hunk = nil
	p.oldLeft, p.newLeft = 0, 0
}

// flushFile appends the current file to the result. A path seen earlier in
// the same diff is merged into its first entry so each path appears once.
func (p *parser) flushFile() {
	p.flushHunk()
	f := p.file
	p.file = nil
	if f == nil || f.Path == "" {
		return
	}
	if i, ok := p.index[f.Path]; ok {
		existing := &p.result.Files[i]
		existing.Hunks = append(existing.Hunks, f.Hunks...)
		if f.Status != StatusModified {
			existing.Status = f.Status
		}
		return
	}
	p.index[f.Path] = len(p.result.Files)
	p.result.Files = append(p.result.Files, *f)
}

// pathFromHeader extracts the new-side path from a "diff --git a/x b/x"
// line. The last " b/" is used because the a-side path may itself
// contain "b/" segments.
func pathFromHeader(header string) string {
	rest := strings.TrimPrefix(header, "diff --git ")
	if i := strings.LastIndex(rest, ` "b/`); i >= 0 {
		return strings.TrimSuffix(rest[i+4:], `"`)
	}
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:]
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return pathFromMarker(fields[len(fields)-1])
}

// pathFromMarker strips the b/ prefix from a "+++" path. /dev/null yields "".
func pathFromMarker(s string) string {
	s = strings.Trim(s, `"`)
	if s == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(s, "b/") || strings.HasPrefix(s, "a/") {
		return s[2:]
	}
	return s
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func decr(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
