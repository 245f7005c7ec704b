// Package archive detects archive payloads and extracts exactly one level of
// nested files through an archive-tool collaborator. Extraction happens in
// isolated scratch storage that is removed on every exit path.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrTempIO indicates scratch storage could not be created or written.
	// It aborts expansion of the sample being processed.
	ErrTempIO = errors.New("scratch storage unavailable")
	// ErrExtraction indicates the archive tool failed mid-extraction.
	// Partial scratch state is still cleaned up before this surfaces.
	ErrExtraction = errors.New("archive extraction failed")
)

// Tool is the archive-tool collaborator contract. Test reports whether the
// file at path is a supported archive; Extract unpacks it into outDir.
type Tool interface {
	Test(path string) bool
	Extract(path, outDir string) error
}

// Member is one file recovered from an expanded archive. Directory structure
// is flattened: only the leaf filename is retained.
type Member struct {
	Filename string
	Data     []byte
}

// Expander writes payloads to uniquely named scratch files and expands them
// via the Tool. Scratch names are collision-free across concurrent workers.
type Expander struct {
	tool Tool
	base string
}

// NewExpander returns an Expander using the system temp directory for
// scratch space.
func NewExpander(tool Tool) *Expander {
	return &Expander{tool: tool, base: os.TempDir()}
}

// Expand reports whether data is an archive and, if so, returns its direct
// members. Members are not re-tested for nested archives: expansion is
// exactly one level deep. A tool verdict of "not an archive" is not an
// error; scratch I/O failures surface as ErrTempIO, extraction failures as
// ErrExtraction.
func (e *Expander) Expand(data []byte) (bool, []Member, error) {
	work := filepath.Join(e.base, "triage-"+uuid.NewString())
	if err := os.Mkdir(work, 0o700); err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrTempIO, err)
	}
	defer os.RemoveAll(work)

	sample := filepath.Join(work, uuid.NewString()+".bin")
	if err := os.WriteFile(sample, data, 0o600); err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrTempIO, err)
	}

	if !e.tool.Test(sample) {
		return false, nil, nil
	}

	outDir := filepath.Join(work, "extracted")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrTempIO, err)
	}
	if err := e.tool.Extract(sample, outDir); err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	members, err := collect(outDir)
	if err != nil {
		return false, nil, err
	}
	return true, members, nil
}

// collect walks the extraction directory and reads every regular file.
// Filename collisions after flattening are kept as-is, not deduplicated.
func collect(dir string) ([]Member, error) {
	var members []Member
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		members = append(members, Member{Filename: filepath.Base(path), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempIO, err)
	}
	return members, nil
}
