package archive

import (
	"os"

	"github.com/mholt/archiver/v3"
)

// ArchiverTool implements Tool using format detection by file header, so the
// scratch file's artificial extension never influences the verdict.
type ArchiverTool struct{}

var _ Tool = ArchiverTool{}

// Test reports whether the file at path matches a supported archive format.
func (ArchiverTool) Test(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = archiver.ByHeader(f)
	return err == nil
}

// Extract unpacks the archive at path into outDir.
func (ArchiverTool) Extract(path, outDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	u, err := archiver.ByHeader(f)
	f.Close()
	if err != nil {
		return err
	}
	return u.Unarchive(path, outDir)
}
