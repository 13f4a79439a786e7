package plotpage

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const (
	siteDirMode  = 0o750
	siteFileMode = 0o600
)

// Site writes pages below a root directory. Every page gets the site's
// project name and theme.
type Site struct {
	FS          afero.Fs
	Dir         string
	ProjectName string
	Theme       Theme
}

// Write renders page to rel, a slash-separated path below the site root,
// creating parent directories.
func (s *Site) Write(rel string, page *Page) error {
	if s.ProjectName != "" {
		page.ProjectName = s.ProjectName
	}

	page.Theme = s.Theme

	var buf bytes.Buffer

	err := page.Render(&buf)
	if err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}

	target := path.Join(s.Dir, rel)

	mkdirErr := s.FS.MkdirAll(path.Dir(target), siteDirMode)
	if mkdirErr != nil {
		return fmt.Errorf("create %s: %w", path.Dir(target), mkdirErr)
	}

	writeErr := afero.WriteFile(s.FS, target, buf.Bytes(), os.FileMode(siteFileMode))
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", target, writeErr)
	}

	return nil
}

// Rel returns the link from page from to page to, both relative to the site
// root.
func Rel(from, to string) string {
	return strings.Repeat("../", strings.Count(path.Clean(from), "/")) + to
}
