// Package fsutil reads files through an os.Root opened at the file's
// directory, so a path can never escape the directory it names.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func openScoped(path string) (*os.Root, *os.File, error) {
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	if path == "" || base == "." || base == string(filepath.Separator) {
		return nil, nil, fmt.Errorf("invalid file path: %q", path)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, err
	}
	file, err := root.Open(base)
	if err != nil {
		_ = root.Close()
		return nil, nil, err
	}
	return root, file, nil
}

// ReadFileScoped reads the whole file at path.
func ReadFileScoped(path string) ([]byte, error) {
	root, file, err := openScoped(path)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	defer file.Close()

	return io.ReadAll(file)
}

// ReadFromOffset reads everything after offset and returns it with the
// offset to use next time. A file shorter than offset was truncated or
// rotated and is read from the start.
func ReadFromOffset(path string, offset int64) ([]byte, int64, error) {
	root, file, err := openScoped(path)
	if err != nil {
		return nil, offset, err
	}
	defer root.Close()
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, err
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, offset, err
	}
	return data, offset + int64(len(data)), nil
}
