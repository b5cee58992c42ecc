package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported taxonomy document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for taxonomy files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported taxonomy format")

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes a taxonomy document. Only a syntactically broken document is
// an error; malformed nodes inside a valid document degrade to empty nodes.
func Parse(data []byte, format string) (*Tree, error) {
	var (
		root any
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = decodeJSON(data)
	case FormatYAML:
		root, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s taxonomy: %w", format, err)
	}
	return buildTree(root), nil
}

// Load reads and parses a taxonomy snapshot file.
func Load(path string) (*Tree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data, format)
}
