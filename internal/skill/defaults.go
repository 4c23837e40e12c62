package skill

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed defaults/*.yaml
var defaultSkills embed.FS

// DefaultNames lists the file names of the bundled skills.
func DefaultNames() []string {
	entries, err := fs.ReadDir(defaultSkills, "defaults")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// InstallDefaults writes the bundled skill files into dir. Existing files
// are left alone unless force is set. It returns the paths it wrote.
func InstallDefaults(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating skills directory: %w", err)
	}

	var written []string
	for _, name := range DefaultNames() {
		dst := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(dst); err == nil {
				continue
			}
		}
		data, err := defaultSkills.ReadFile("defaults/" + name)
		if err != nil {
			return written, fmt.Errorf("reading bundled skill %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return written, fmt.Errorf("writing skill file: %w", err)
		}
		written = append(written, dst)
	}
	return written, nil
}
