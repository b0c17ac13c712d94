package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLang is the language of the catalog the product ships first.
const DefaultLang = "vi"

// Catalog resolves import issue messages per language.
type Catalog struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag
}

// NewCatalog loads every embedded locale. fallback is used when a request
// names no supported language.
func NewCatalog(fallback string) (*Catalog, error) {
	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", fallback, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}

	// The fallback goes first so the matcher prefers it on ties.
	tags := []language.Tag{tag}
	for _, t := range bundle.LanguageTags() {
		if t != tag {
			tags = append(tags, t)
		}
	}
	return &Catalog{bundle: bundle, matcher: language.NewMatcher(tags), tags: tags}, nil
}

// MustNewCatalog panics when the embedded locales are broken.
func MustNewCatalog(fallback string) *Catalog {
	c, err := NewCatalog(fallback)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve picks a supported language from a lang parameter or an
// Accept-Language header value.
func (c *Catalog) Resolve(pref ...string) string {
	for _, p := range pref {
		if p == "" {
			continue
		}
		wanted, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(wanted) == 0 {
			continue
		}
		_, idx, conf := c.matcher.Match(wanted...)
		if conf == language.No {
			continue
		}
		return baseOf(c.tags[idx])
	}
	return baseOf(c.tags[0])
}

func baseOf(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}

// Messages returns the issue texts for lang, falling back per message to the
// catalog default.
func (c *Catalog) Messages(lang string) quizimport.Messages {
	loc := i18n.NewLocalizer(c.bundle, c.Resolve(lang))
	return quizimport.Messages{
		MissingContent: c.localize(loc, "MissingContent", nil),
		NeedTwoOptions: c.localize(loc, "NeedTwoOptions", nil),
		MissingOption: func(column string) string {
			return c.localize(loc, "MissingOption", map[string]any{"Column": column})
		},
		MissingCorrect:      c.localize(loc, "MissingCorrect", nil),
		CorrectOutOfRange:   c.localize(loc, "CorrectOutOfRange", nil),
		CorrectEmptyOption:  c.localize(loc, "CorrectEmptyOption", nil),
		MissingQuestionType: c.localize(loc, "MissingQuestionType", nil),
		NoSheet:             c.localize(loc, "NoSheet", nil),
		EmptySheet:          c.localize(loc, "EmptySheet", nil),
	}
}

func (c *Catalog) localize(loc *i18n.Localizer, id string, data map[string]any) string {
	s, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		log.Printf("missing translation id=%s err=%v", id, err)
		return id
	}
	return s
}

// Languages lists the supported base languages, default first.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tags))
	for _, t := range c.tags {
		out = append(out, baseOf(t))
	}
	return out
}
