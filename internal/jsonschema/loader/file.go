package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

func loadFile(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	if path == "" {
		return nil, errors.New("jsonschema loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := readLimited(file, maxBytes)
	if err != nil {
		return nil, err
	}
	if err := checkSize(data, maxBytes, abs); err != nil {
		return nil, err
	}
	return data, nil
}

// readLimited reads at most maxBytes+1 bytes so callers can tell an oversized
// document from one that fits exactly.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, maxBytes+1))
}
