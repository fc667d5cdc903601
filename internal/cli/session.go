package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/graphomotor/internal/archive"
	"github.com/roach88/graphomotor/internal/ingest"
	"github.com/roach88/graphomotor/internal/pipeline"
)

// sessionFile is one capture loaded from disk.
type sessionFile struct {
	Path  string
	ID    string // export ID, or the file name without extension
	Kind  string // archive.KindJSON or archive.KindRM
	Raw   []byte
	Input pipeline.Input
}

// loadSession reads and decodes a capture. A .rm page is a tablet page;
// anything else is an application export. A non-empty task overrides the
// task derived from the export.
//
// Read failures are command errors; decode failures keep their
// ir.AnalysisError so the caller can report them as rejected input.
func loadSession(path, task string) (sessionFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sessionFile{}, WrapExitError(ExitCommandError, "failed to read session", err)
	}

	base := filepath.Base(path)
	s := sessionFile{
		Path: path,
		ID:   strings.TrimSuffix(base, filepath.Ext(base)),
		Kind: archive.KindOf(base),
		Raw:  raw,
	}

	switch s.Kind {
	case archive.KindRM:
		page, err := ingest.DecodeRM(raw)
		if err != nil {
			return sessionFile{}, fmt.Errorf("%s: %w", path, err)
		}
		s.Input = page.Input(task)
	default:
		export, err := ingest.DecodeSessionJSON(raw)
		if err != nil {
			return sessionFile{}, fmt.Errorf("%s: %w", path, err)
		}
		if export.ID != "" {
			s.ID = export.ID
		}
		s.Input = export.Input()
		if task != "" {
			s.Input.TaskID = task
		}
	}
	return s, nil
}
