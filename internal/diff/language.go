package diff

import (
	"path/filepath"
	"strings"
)

var languageByExt = map[string]string{
	".go":     "Go",
	".py":     "Python",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".mjs":    "JavaScript",
	".cjs":    "JavaScript",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".rs":     "Rust",
	".java":   "Java",
	".kt":     "Kotlin",
	".kts":    "Kotlin",
	".swift":  "Swift",
	".m":      "Objective-C",
	".mm":     "Objective-C",
	".rb":     "Ruby",
	".php":    "PHP",
	".c":      "C",
	".h":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".cxx":    "C++",
	".hpp":    "C++",
	".cs":     "C#",
	".scala":  "Scala",
	".dart":   "Dart",
	".lua":    "Lua",
	".sh":     "Shell",
	".bash":   "Shell",
	".sql":    "SQL",
	".html":   "HTML",
	".css":    "CSS",
	".scss":   "SCSS",
	".vue":    "Vue",
	".svelte": "Svelte",
	".yaml":   "YAML",
	".yml":    "YAML",
	".json":   "JSON",
	".md":     "Markdown",
	".tf":     "Terraform",
}

// DetectLanguage maps a file path to a language name by its extension.
// It returns "" for unknown extensions.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	return languageByExt[ext]
}
