package loader

import (
	"context"
	"errors"
	"io/fs"
	"strings"
)

func loadFromFS(ctx context.Context, files fs.FS, name string, maxBytes int64) ([]byte, error) {
	if name == "" {
		return nil, errors.New("jsonschema loader: fs path is required")
	}
	if files == nil {
		return nil, errors.New("jsonschema loader: fs is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	name = strings.TrimPrefix(name, "/")
	file, err := files.Open(name)
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
	if err := checkSize(data, maxBytes, name); err != nil {
		return nil, err
	}
	return data, nil
}
