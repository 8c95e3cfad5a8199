// Package i18n holds the translated labels and OFX tag descriptions.
//
// Catalogs are embedded YAML files, one per language. Resolve picks the
// catalog for a locale such as "pt-BR" or "en_US.UTF-8", falling back to
// English.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Default is the language used when a locale has no catalog.
const Default = "en"

//go:embed locales/*.yaml
var locales embed.FS

// Catalog is the label and tag description table of one language.
type Catalog struct {
	Code   string            `yaml:"-"`
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels"`
	Tags   map[string]string `yaml:"tags"`

	fallback *Catalog
}

// Label returns the text for key, the English text when this catalog lacks
// it, or key itself.
func (c *Catalog) Label(key string) string {
	for cat := c; cat != nil; cat = cat.fallback {
		if v, ok := cat.Labels[key]; ok {
			return v
		}
	}
	return key
}

// TagDescription describes an OFX tag such as STMTTRN or a transaction type
// such as DIRECTDEP.
func (c *Catalog) TagDescription(tag string) (string, bool) {
	for cat := c; cat != nil; cat = cat.fallback {
		if v, ok := cat.Tags[tag]; ok {
			return v, true
		}
	}
	return "", false
}

// Parse decodes a catalog from YAML.
func Parse(code string, data []byte) (*Catalog, error) {
	cat := &Catalog{Code: code}
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog: %w", code, err)
	}
	return cat, nil
}

var catalogs = sync.OnceValues(func() (map[string]*Catalog, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]*Catalog, len(entries))
	for _, entry := range entries {
		data, err := locales.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, err
		}
		code := strings.TrimSuffix(entry.Name(), ".yaml")
		cat, err := Parse(code, data)
		if err != nil {
			return nil, err
		}
		loaded[code] = cat
	}

	base, ok := loaded[Default]
	if !ok {
		return nil, fmt.Errorf("missing %s catalog", Default)
	}
	for code, cat := range loaded {
		if code != Default {
			cat.fallback = base
		}
	}
	return loaded, nil
})

func mustCatalogs() map[string]*Catalog {
	loaded, err := catalogs()
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded catalogs are broken: %v", err))
	}
	return loaded
}

// Languages returns the codes of every catalog, sorted.
func Languages() []string {
	loaded := mustCatalogs()
	codes := make([]string, 0, len(loaded))
	for code := range loaded {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Lookup returns the catalog for an exact language code.
func Lookup(code string) (*Catalog, bool) {
	cat, ok := mustCatalogs()[code]
	return cat, ok
}

// Resolve returns the catalog for locale: an exact match first, then any
// Portuguese variant maps to pt-br, everything else to English.
func Resolve(locale string) *Catalog {
	loaded := mustCatalogs()

	normalized := normalize(locale)
	if cat, ok := loaded[normalized]; ok {
		return cat
	}

	if tag, err := language.Parse(normalized); err == nil {
		if base, _ := tag.Base(); base.String() == "pt" {
			return loaded["pt-br"]
		}
	}

	return loaded[Default]
}

// normalize turns POSIX locales like "pt_BR.UTF-8" into "pt-br".
func normalize(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
}
