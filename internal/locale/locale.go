// Package locale provides the localization dictionary for user-facing
// strings. Dictionaries are embedded YAML documents, one per locale.
package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// FallbackLocale is consulted when the active locale has no entry for a key.
const FallbackLocale = "en"

// Translator resolves message keys against a locale dictionary with
// fallback. Construct one per service; there is no package-level instance.
type Translator struct {
	locale string
	tables map[string]map[string]string
}

// NewTranslator loads the embedded dictionaries and activates the given
// locale. Unknown locales fall back entirely to the fallback dictionary.
func NewTranslator(localeCode string) (*Translator, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locale dictionaries: %w", err)
	}

	tables := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}
		var tree map[string]interface{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
		}
		code := strings.TrimSuffix(name, ".yaml")
		table := make(map[string]string)
		flatten("", tree, table)
		tables[code] = table
	}

	if _, ok := tables[FallbackLocale]; !ok {
		return nil, fmt.Errorf("fallback locale %q dictionary is missing", FallbackLocale)
	}
	if localeCode == "" {
		localeCode = FallbackLocale
	}

	return &Translator{locale: localeCode, tables: tables}, nil
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprintf("%v", val)
		}
	}
}

// Locale returns the active locale code.
func (t *Translator) Locale() string {
	return t.locale
}

// Locales returns all embedded locale codes, sorted.
func (t *Translator) Locales() []string {
	codes := make([]string, 0, len(t.tables))
	for code := range t.tables {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// T resolves a message key: active locale first, then the fallback locale,
// then the key itself so missing entries stay visible instead of vanishing.
func (t *Translator) T(key string) string {
	if table, ok := t.tables[t.locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := t.tables[FallbackLocale][key]; ok {
		return msg
	}
	return key
}

// Tf resolves a message key and applies fmt formatting to it.
func (t *Translator) Tf(key string, args ...interface{}) string {
	return fmt.Sprintf(t.T(key), args...)
}

// WithLocale returns a Translator sharing the same dictionaries with a
// different active locale.
func (t *Translator) WithLocale(localeCode string) *Translator {
	if localeCode == "" {
		localeCode = FallbackLocale
	}
	return &Translator{locale: localeCode, tables: t.tables}
}
