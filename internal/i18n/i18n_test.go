package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func TestMatchAndTranslate(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	es := tr.Match("es-AR,es;q=0.9,en;q=0.5")
	assert.Equal(t, "Contraseña de la app inválida", tr.T(es, "Invalid app password"))

	en := tr.Match("en-US")
	assert.Equal(t, "Invalid app password", tr.T(en, "Invalid app password"))

	// idioma no soportado => default
	assert.Equal(t, "Login successful", tr.T(tr.Match("ja"), "Login successful"))
	assert.Equal(t, "Login successful", tr.T(tr.Match(""), "Login successful"))

	// sin traducción => mensaje fuente
	assert.Equal(t, "whatever", tr.T(es, "whatever"))
}

func TestContextLanguage(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	ctx := WithLanguage(context.Background(), tr, tr.Match("es"))
	assert.Equal(t, "Permisos insuficientes", T(ctx, "Insufficient permissions"))
	assert.Equal(t, "Insufficient permissions", T(context.Background(), "Insufficient permissions"))
	assert.Equal(t, "es", LanguageFrom(ctx).String())
	assert.Equal(t, language.Und, LanguageFrom(context.Background()))
}

func TestCatalogsHaveNoEmptyEntries(t *testing.T) {
	entries, err := localesFS.ReadDir("locales")
	require.NoError(t, err)
	for _, e := range entries {
		b, err := localesFS.ReadFile("locales/" + e.Name())
		require.NoError(t, err)
		cat := map[string]string{}
		require.NoError(t, yaml.Unmarshal(b, &cat))
		for k, v := range cat {
			assert.NotEmpty(t, v, "%s: %q sin traducción", e.Name(), k)
		}
	}
}

func TestNew_BadDefault(t *testing.T) {
	_, err := New("!!")
	assert.Error(t, err)
}
