// Package i18n traduce los mensajes de respuesta según Accept-Language.
//
// Las claves son los mensajes fuente en inglés; un mensaje sin traducción se
// devuelve tal cual.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

type Translator struct {
	tags     []language.Tag
	matcher  language.Matcher
	catalogs map[language.Tag]map[string]string
}

// New carga los catálogos embebidos. def es el idioma fuente (sin catálogo).
func New(def string) (*Translator, error) {
	base, err := language.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("i18n: default language %q: %w", def, err)
	}
	t := &Translator{
		tags:     []language.Tag{base},
		catalogs: map[language.Tag]map[string]string{},
	}

	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: catalog %s: %w", e.Name(), err)
		}
		b, err := localesFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, err
		}
		cat := map[string]string{}
		if err := yaml.Unmarshal(b, &cat); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
		if tag == base {
			continue
		}
		t.tags = append(t.tags, tag)
		t.catalogs[tag] = cat
	}
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

// Match elige el idioma soportado para un header Accept-Language.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.tags[0]
	}
	_, idx, _ := t.matcher.Match(prefs...)
	return t.tags[idx]
}

// T traduce msg al idioma dado.
func (t *Translator) T(tag language.Tag, msg string) string {
	if cat := t.catalogs[tag]; cat != nil {
		if s, ok := cat[msg]; ok && s != "" {
			return s
		}
	}
	return msg
}

// Languages devuelve los idiomas soportados (el default primero).
func (t *Translator) Languages() []language.Tag {
	return append([]language.Tag(nil), t.tags...)
}

type ctxKey struct{}

type localizer struct {
	tr  *Translator
	tag language.Tag
}

// WithLanguage guarda traductor e idioma del request.
func WithLanguage(ctx context.Context, tr *Translator, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, localizer{tr: tr, tag: tag})
}

// LanguageFrom devuelve el idioma del request o language.Und.
func LanguageFrom(ctx context.Context) language.Tag {
	if l, ok := ctx.Value(ctxKey{}).(localizer); ok {
		return l.tag
	}
	return language.Und
}

// T traduce msg con el idioma del request; sin localizer devuelve msg.
func T(ctx context.Context, msg string) string {
	if l, ok := ctx.Value(ctxKey{}).(localizer); ok && l.tr != nil {
		return l.tr.T(l.tag, msg)
	}
	return msg
}
