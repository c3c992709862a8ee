package i18n

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// FallbackLanguage is used when no locale matches
var FallbackLanguage = language.English

// Catalog holds all embedded translations.
type Catalog struct {
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

// Translator formats messages for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
	defaultCatalogErr  error
)

// Load parses the embedded locale files.
func Load() (*Catalog, error) {
	files, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(FallbackLanguage)),
		messages: make(map[language.Tag]map[string]string),
	}

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}

		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("invalid locale file name %q: %w", name, err)
		}

		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for key, msg := range msgs {
			if err := c.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("%s: invalid message %q: %w", name, key, err)
			}
		}
		c.messages[tag] = msgs
		c.tags = append(c.tags, tag)
	}

	if _, ok := c.messages[FallbackLanguage]; !ok {
		return nil, fmt.Errorf("fallback locale %s is missing", FallbackLanguage)
	}

	// The matcher treats the first tag as the default
	sort.SliceStable(c.tags, func(i, j int) bool {
		if c.tags[i] == FallbackLanguage {
			return true
		}
		if c.tags[j] == FallbackLanguage {
			return false
		}
		return c.tags[i].String() < c.tags[j].String()
	})
	c.matcher = language.NewMatcher(c.tags)

	return c, nil
}

// Default returns the lazily loaded embedded catalog.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = Load()
	})
	return defaultCatalog, defaultCatalogErr
}

// Languages returns the available languages, fallback first
func (c *Catalog) Languages() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Keys returns the message keys defined for tag, sorted
func (c *Catalog) Keys(tag language.Tag) []string {
	msgs := c.messages[tag]
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match returns the best available language for a locale string.
func (c *Catalog) Match(locale string) language.Tag {
	if locale == "" {
		return c.tags[0]
	}
	_, idx, _ := c.matcher.Match(language.Make(locale))
	return c.tags[idx]
}

// Translator returns a translator for the best match of locale.
func (c *Catalog) Translator(locale string) *Translator {
	tag := c.Match(locale)
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(c.builder)),
	}
}

// T formats the message for key with args.
func (t *Translator) T(key string, args ...interface{}) string {
	return t.printer.Sprintf(key, args...)
}

// Tag returns the language of the translator
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// DetectLocale returns explicit if set, otherwise the locale from the
// environment. The result is a BCP 47 tag string, "en" when nothing is set.
func DetectLocale(explicit string) string {
	candidates := []string{explicit, os.Getenv("LC_ALL"), os.Getenv("LC_MESSAGES"), os.Getenv("LANG")}
	for _, c := range candidates {
		if tag := posixToBCP47(c); tag != "" {
			return tag
		}
	}
	return FallbackLanguage.String()
}

// posixToBCP47 converts "ru_RU.UTF-8@euro" to "ru-RU". C and POSIX locales
// carry no language and yield "".
func posixToBCP47(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(locale, "_", "-")
}
