// Package i18n serves the storefront copy. Locale files are YAML
// documents rooted at a language code; nested sections flatten into
// dot-separated keys, so "catalog: {empty_category: ...}" under "ru:"
// becomes the ru entry for "catalog.empty_category".
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultDir = "internal/i18n/locales"

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Tf(key string, args ...any) string
	Lang() string
}

// Manager holds the flattened catalog of every loaded language and
// hands out per-language translators.
type Manager struct {
	catalog     map[string]map[string]string
	defaultLang string
}

// Load reads the locale files shipped with the bot.
func Load(defaultLang string) (*Manager, error) {
	return LoadFromDir(defaultDir, defaultLang)
}

// LoadFromDir reads every YAML file in dir and merges the languages
// they declare. The default language must end up present.
func LoadFromDir(dir, defaultLang string) (*Manager, error) {
	catalog, err := loadCatalog(dir)
	if err != nil {
		return nil, err
	}

	if defaultLang == "" {
		defaultLang = "en"
	}

	if _, ok := catalog[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{catalog: catalog, defaultLang: defaultLang}, nil
}

// Translator returns the translator for lang, falling back to the
// default language when lang is unknown or empty.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	norm := strings.ToLower(strings.TrimSpace(lang))
	if norm == "" || m.catalog[norm] == nil {
		norm = m.defaultLang
	}

	return translator{
		lang:     norm,
		fallback: m.defaultLang,
		catalog:  m.catalog,
	}
}

// Languages returns all loaded language codes.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}

	languages := make([]string, 0, len(m.catalog))
	for lang := range m.catalog {
		languages = append(languages, lang)
	}
	return languages
}

// translator answers lookups for one language. Misses fall through to
// the default language, then to the key itself, so a gap in a locale
// file shows up in the chat as the raw key rather than silence.
type translator struct {
	lang     string
	fallback string
	catalog  map[string]map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	if value := t.lookup(t.lang, key); value != "" {
		return value
	}

	if value := t.lookup(t.fallback, key); value != "" {
		return value
	}

	return key
}

// Tf resolves the key and applies fmt formatting to its value.
func (t translator) Tf(key string, args ...any) string {
	format := t.T(key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func (t translator) lookup(lang, key string) string {
	if lang == "" || t.catalog == nil {
		return ""
	}

	if entries := t.catalog[lang]; entries != nil {
		return entries[key]
	}

	return ""
}

// loadCatalog merges every YAML file of a directory into one
// language-keyed catalog. Later files override earlier ones on key
// collisions.
func loadCatalog(dir string) (map[string]map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	catalog := make(map[string]map[string]string)
	seen := false

	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		seen = true

		perLang, err := readLocaleFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		for lang, translations := range perLang {
			if catalog[lang] == nil {
				catalog[lang] = make(map[string]string)
			}
			for key, value := range translations {
				catalog[lang][key] = value
			}
		}
	}

	if !seen {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", dir)
	}

	return catalog, nil
}

// readLocaleFile parses one file into flattened per-language maps. The
// document's top-level keys are language codes.
func readLocaleFile(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("i18n: read file %s: %w", path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return map[string]map[string]string{}, nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("i18n: parse file %s: %w", path, err)
	}

	perLang := make(map[string]map[string]string)
	for lang, sections := range doc {
		code := strings.ToLower(strings.TrimSpace(lang))
		if code == "" {
			continue
		}

		flattened := make(map[string]string)
		flattenInto("", asStringKeyed(sections), flattened)
		if len(flattened) == 0 {
			continue
		}

		perLang[code] = flattened
	}

	return perLang, nil
}

// asStringKeyed normalizes the two map shapes the YAML decoder can
// produce, dropping non-string keys.
func asStringKeyed(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[interface{}]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if keyStr, ok := key.(string); ok {
				out[keyStr] = item
			}
		}
		return out
	default:
		return nil
	}
}

// flattenInto walks nested sections, joining path segments with dots.
// Only string leaves survive.
func flattenInto(prefix string, section map[string]any, out map[string]string) {
	for key, value := range section {
		if key == "" {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[path] = v
		default:
			if child := asStringKeyed(v); child != nil {
				flattenInto(path, child, out)
			}
		}
	}
}
