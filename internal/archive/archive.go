// Package archive retains raw captures as zstd-compressed files so an
// analysis can be recomputed from the exact bytes it started from.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Raw capture kinds, used as the file name infix.
const (
	KindJSON = "json"
	KindRM   = "rm"
)

// Archive compresses raw into dir/{session-id}.{kind}.zst.
// Returns the archive path. An existing archive is overwritten.
func Archive(sessionID, kind string, raw []byte, dir string) (string, error) {
	if err := checkName(sessionID); err != nil {
		return "", err
	}
	if err := checkName(kind); err != nil {
		return "", err
	}

	destPath := Path(sessionID, kind, dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, bytes.NewReader(raw)); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Load decompresses an archive and returns the raw capture.
func Load(archivePath string) ([]byte, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return raw, nil
}

// IsArchived returns true if an archive file exists for the session.
func IsArchived(sessionID, kind, dir string) bool {
	_, err := os.Stat(Path(sessionID, kind, dir))
	return err == nil
}

// Path returns the deterministic archive path for a session.
func Path(sessionID, kind, dir string) string {
	return filepath.Join(dir, sessionID+"."+kind+".zst")
}

// KindOf returns the capture kind for a source file name.
func KindOf(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".rm") {
		return KindRM
	}
	return KindJSON
}

func checkName(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid archive name %q", s)
	}
	return nil
}
