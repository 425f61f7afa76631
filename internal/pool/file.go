package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/matchcore/internal/domain/model"
)

const filePermission = 0o644

// Format is a pool file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Decode parses a ranking request encoded as f.
func Decode(data []byte, f Format) (model.RankRequest, error) {
	var req model.RankRequest
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &req)
	case FormatJSON:
		err = json.Unmarshal(data, &req)
	default:
		return req, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return model.RankRequest{}, fmt.Errorf("decode %s pool: %w", f, err)
	}
	return req, nil
}

// Encode serializes req as f.
func Encode(req model.RankRequest, f Format) ([]byte, error) { //nolint:gocritic // hugeParam
	switch f {
	case FormatYAML:
		return yaml.Marshal(&req)
	case FormatJSON:
		return json.MarshalIndent(&req, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Load reads a pool file, choosing the decoder from its extension.
func Load(path string) (model.RankRequest, error) {
	f, err := FormatFor(path)
	if err != nil {
		return model.RankRequest{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RankRequest{}, fmt.Errorf("read pool file: %w", err)
	}
	return Decode(data, f)
}

// Save writes req to path, choosing the encoder from its extension.
func Save(path string, req model.RankRequest) error { //nolint:gocritic // hugeParam
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(req, f)
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write pool file: %w", err)
	}
	return nil
}
