// Package i18n holds the English and Spanish UI strings and picks the
// language for a request.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Language is a supported UI language code.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// Languages lists the supported languages, default first.
var Languages = []Language{English, Spanish}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// Parse returns the supported language for code, or false.
func Parse(code string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case English:
		return English, true
	case Spanish:
		return Spanish, true
	}
	return "", false
}

// Negotiate picks the response language. An explicit query value wins,
// then the Accept-Language header. ok is false when neither names a
// supported language and the result is English.
func Negotiate(query, acceptLanguage string) (Language, bool) {
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			if lang, ok := match(tag); ok {
				return lang, true
			}
		}
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			if lang, ok := match(tags...); ok {
				return lang, true
			}
		}
	}
	return English, false
}

func match(tags ...language.Tag) (Language, bool) {
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return Languages[idx], true
}

// Bundle is the loaded set of translation tables.
type Bundle struct {
	tables map[Language]map[string]any
	flat   map[Language]map[string]string
}

// Load parses the embedded locale files.
func Load() (*Bundle, error) {
	b := &Bundle{
		tables: make(map[Language]map[string]any, len(Languages)),
		flat:   make(map[Language]map[string]string, len(Languages)),
	}
	for _, lang := range Languages {
		data, err := locales.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s locale: %w", lang, err)
		}
		var table map[string]any
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse %s locale: %w", lang, err)
		}
		flat := make(map[string]string)
		flatten("", table, flat)
		b.tables[lang] = table
		b.flat[lang] = flat
	}
	return b, nil
}

// MustLoad is Load for program start-up; it panics on a malformed locale.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// T looks up a dotted key such as "checkIn.successToast". Missing Spanish
// strings fall back to English; a key missing everywhere is returned as is.
func (b *Bundle) T(lang Language, key string) string {
	if s, ok := b.flat[lang][key]; ok {
		return s
	}
	if s, ok := b.flat[English][key]; ok {
		return s
	}
	return key
}

// Table returns the nested table for lang, or nil if unsupported.
func (b *Bundle) Table(lang Language) map[string]any {
	return b.tables[lang]
}

// Keys returns the sorted dotted keys defined for lang.
func (b *Bundle) Keys(lang Language) []string {
	keys := make([]string, 0, len(b.flat[lang]))
	for k := range b.flat[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
