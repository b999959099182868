package cuesheet

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindReference locates a reference cue sheet named name inside source and
// returns its raw bytes. Source may be a single cue file, a directory of cue
// sheets, or a zip archive of them.
//
// A directory or archive without an entry for name is not an error: it is
// reasonable to supply a collection that simply lacks this game's sheet, and
// found reports false. A source path that does not exist at all is an error,
// since the caller asked for it explicitly.
func FindReference(source, name string) (data []byte, found bool, err error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("reference cue source %q does not exist", source)
		}
		return nil, false, fmt.Errorf("inspect reference cue source: %w", err)
	}

	path := source
	if info.IsDir() {
		path = filepath.Join(source, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		} else if err != nil {
			return nil, false, fmt.Errorf("inspect reference cue: %w", err)
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return findReferenceInZip(path, name)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read reference cue: %w", err)
	}
	return data, true, nil
}

func findReferenceInZip(archivePath, name string) ([]byte, bool, error) {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, false, fmt.Errorf("open reference cue zip: %w", err)
	}
	defer archive.Close()

	for _, member := range archive.File {
		if member.Name != name {
			continue
		}
		reader, err := member.Open()
		if err != nil {
			return nil, false, fmt.Errorf("open reference cue zip member: %w", err)
		}
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, false, fmt.Errorf("read reference cue zip member: %w", err)
		}
		return data, true, nil
	}
	return nil, false, nil
}
