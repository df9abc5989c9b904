package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Fixture is a serialised set of posts with their translations.
type Fixture struct {
	Posts []PostFixture `json:"posts"`
}

// PostFixture holds the native values of one post and its translations
// keyed by locale then attribute. A null value stores a NULL translation.
type PostFixture struct {
	Slug         string                        `json:"slug"`
	Body         string                        `json:"body"`
	Translations map[string]map[string]*string `json:"translations"`
}

//go:embed testdata/posts_fixture.json
var defaultFixtureData embed.FS

// DefaultFixture loads the built-in demo fixture.
func DefaultFixture() (*Fixture, error) {
	data, err := defaultFixtureData.ReadFile("testdata/posts_fixture.json")
	if err != nil {
		return nil, fmt.Errorf("seed: read embedded fixture: %w", err)
	}
	return decodeFixture(bytes.NewReader(data))
}

// Loader reads fixtures from disk.
type Loader struct {
	path string
}

// NewLoader constructs a loader that reads the provided file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the configured fixture file.
func (l *Loader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("seed: loader path cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("seed: open fixture %q: %w", l.path, err)
	}
	defer file.Close()

	return decodeFixture(file)
}

func decodeFixture(r io.Reader) (*Fixture, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode fixture: %w", err)
	}
	return &fx, nil
}
