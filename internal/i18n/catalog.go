// Package i18n loads the message catalogs used for plugin strings.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the parsed catalogs and resolves printers for language tags.
type Bundle struct {
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	messages map[string]map[string]string
}

// Load parses the catalogs embedded in the binary.
func Load() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS parses every locales/*.yaml catalog found in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	base := language.MustParse(BaseLocale)
	bundle := &Bundle{
		builder:  catalog.NewBuilder(catalog.Fallback(base)),
		messages: make(map[string]map[string]string),
	}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		locale := strings.TrimSpace(file.Locale)
		if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, want)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages are required", p)
		}

		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: parse locale: %w", p, err)
		}
		if err := bundle.add(tag, locale, file.Messages); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}

	if _, ok := bundle.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}

	// The base locale goes first so the matcher falls back to it.
	sort.SliceStable(bundle.tags, func(i, j int) bool {
		return bundle.tags[i] == base && bundle.tags[j] != base
	})
	bundle.matcher = language.NewMatcher(bundle.tags)

	return bundle, nil
}

func (b *Bundle) add(tag language.Tag, locale string, messages map[string]string) error {
	tags := []language.Tag{tag}
	if baseLang, confidence := tag.Base(); confidence != language.No {
		if parent, err := language.Parse(baseLang.String()); err == nil && parent != tag {
			tags = append(tags, parent)
		}
	}

	stored := make(map[string]string, len(messages))
	for key, value := range messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("message key cannot be blank")
		}
		for _, t := range tags {
			if err := b.builder.SetString(t, key, value); err != nil {
				return fmt.Errorf("register %q: %w", key, err)
			}
		}
		stored[key] = value
	}

	b.messages[locale] = stored
	b.tags = append(b.tags, tag)
	return nil
}

// Tags returns the locales with a catalog, base locale first.
func (b *Bundle) Tags() []language.Tag {
	out := make([]language.Tag, len(b.tags))
	copy(out, b.tags)
	return out
}

// Match picks the best supported tag for an Accept-Language header or a
// single language value.
func (b *Bundle) Match(values ...string) language.Tag {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(value)
		if err != nil || len(tags) == 0 {
			continue
		}
		tag, _, confidence := b.matcher.Match(tags...)
		if confidence != language.No {
			return b.supported(tag)
		}
	}
	return b.tags[0]
}

// supported strips the matcher's -u-rg extensions back to a catalog tag.
func (b *Bundle) supported(tag language.Tag) language.Tag {
	for _, t := range b.tags {
		if t == tag {
			return t
		}
	}
	baseLang, _ := tag.Base()
	region, _ := tag.Region()
	for _, t := range b.tags {
		tb, _ := t.Base()
		tr, _ := t.Region()
		if tb == baseLang && tr == region {
			return t
		}
	}
	for _, t := range b.tags {
		if tb, _ := t.Base(); tb == baseLang {
			return t
		}
	}
	return b.tags[0]
}

// Printer returns a printer bound to the bundle catalog.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.builder))
}

// Text formats the message key for tag.
func (b *Bundle) Text(tag language.Tag, key string, args ...interface{}) string {
	return b.Printer(tag).Sprintf(key, args...)
}

// FormatTime renders t with the locale's date-time layout.
func (b *Bundle) FormatTime(tag language.Tag, t time.Time) string {
	layout := b.Text(tag, "format.datetime")
	if layout == "" || layout == "format.datetime" {
		layout = time.RFC1123
	}
	return t.Format(layout)
}
