package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

//go:embed metaschema.json
var metaSchemaJSON []byte

//go:embed i765.json
var defaultSchemaJSON []byte

// FetchFunc retrieves the bytes behind a URL-backed source. The loader never
// talks to the network itself; callers inject whatever fetch pipeline they
// run, typically the cache layer.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Source names one place a schema document may live. Set URL for remote
// documents or Path for local files; the zero Source reads the embedded
// default I-765 schema.
type Source struct {
	URL  string
	Path string
}

func (s Source) String() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Path != "":
		return s.Path
	default:
		return "embedded default"
	}
}

// DefaultSources is the chain used when configuration names no sources at
// all: just the embedded default.
func DefaultSources() []Source {
	return []Source{{}}
}

// Loader resolves a schema from an ordered list of candidate sources.
type Loader struct {
	fetch  FetchFunc
	logger logging.Logger
}

// NewLoader builds a Loader. fetch may be nil when no URL sources are
// configured.
func NewLoader(fetch FetchFunc, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{fetch: fetch, logger: logger}
}

// Load tries each source in order and returns the first document that
// parses and passes structural validation. Failures are logged and the next
// candidate is tried; when every candidate fails the returned schema is
// empty rather than nil, so mapping and validation keep working against
// zero descriptors instead of crashing the caller.
func (l *Loader) Load(ctx context.Context, sources []Source) *Schema {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	for _, src := range sources {
		data, err := l.read(ctx, src)
		if err != nil {
			l.logger.Warn("schema source unavailable", map[string]interface{}{
				"source": src.String(),
				"error":  err.Error(),
			})
			continue
		}
		s, err := Parse(data)
		if err != nil {
			l.logger.Warn("schema source rejected", map[string]interface{}{
				"source": src.String(),
				"error":  err.Error(),
			})
			continue
		}
		l.audit(src, s)
		l.logger.Info("field schema loaded", map[string]interface{}{
			"source": src.String(),
			"parts":  len(s.Parts),
			"fields": s.Len(),
		})
		return s
	}
	l.logger.Error("no schema source usable, continuing with an empty schema", map[string]interface{}{
		"sources": len(sources),
	})
	return Empty()
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case src.URL != "":
		if l.fetch == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", src.URL)
		}
		data, err := l.fetch(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", src.URL, err)
		}
		return data, nil
	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.Path, err)
		}
		return data, nil
	default:
		return defaultSchemaJSON, nil
	}
}

// audit surfaces authoring problems that are legal JSON but will bite at
// runtime. Neither is fatal: duplicates resolve to the first declaration
// and ambiguous reverse mappings resolve to the first matching key.
func (l *Loader) audit(src Source, s *Schema) {
	if dups := s.DuplicateFieldIDs(); len(dups) > 0 {
		l.logger.Warn("schema declares duplicate field ids", map[string]interface{}{
			"source":    src.String(),
			"field_ids": strings.Join(dups, ", "),
		})
	}
	for id, values := range s.AmbiguousMappings() {
		l.logger.Warn("value mapping cannot be reversed unambiguously", map[string]interface{}{
			"source":   src.String(),
			"field_id": id,
			"values":   strings.Join(values, ", "),
		})
	}
}

// Parse decodes a schema document after validating its structure against
// the embedded meta-schema. Unknown properties and wrong shapes are
// rejected here so the rest of the pipeline can trust descriptor fields.
func Parse(data []byte) (*Schema, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(metaSchemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validating schema document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("schema document invalid: %s", strings.Join(msgs, "; "))
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding schema document: %w", err)
	}
	return &s, nil
}
