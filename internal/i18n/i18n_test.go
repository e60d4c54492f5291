package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocales(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	ru := `ru:
  menu:
    welcome: "Добро пожаловать"
  cart:
    total: "Итого: %d Руб"
`
	en := `en:
  menu:
    welcome: "Welcome"
`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte(ru), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(en), 0o644))

	return dir
}

func TestLoadFromDirFlattensSections(t *testing.T) {
	m, err := LoadFromDir(writeLocales(t), "ru")
	require.NoError(t, err)

	tr := m.Translator("ru")
	assert.Equal(t, "ru", tr.Lang())
	assert.Equal(t, "Добро пожаловать", tr.T("menu.welcome"))
	assert.Equal(t, "Итого: 1800 Руб", tr.Tf("cart.total", 1800))
}

func TestTranslatorFallsBackToDefaultLanguage(t *testing.T) {
	m, err := LoadFromDir(writeLocales(t), "ru")
	require.NoError(t, err)

	// cart.total exists only in ru, the default.
	tr := m.Translator("en")
	assert.Equal(t, "en", tr.Lang())
	assert.Equal(t, "Welcome", tr.T("menu.welcome"))
	assert.Equal(t, "Итого: 5 Руб", tr.Tf("cart.total", 5))
}

func TestTranslatorReturnsKeyOnMiss(t *testing.T) {
	m, err := LoadFromDir(writeLocales(t), "ru")
	require.NoError(t, err)

	assert.Equal(t, "errors.generic", m.Translator("ru").T("errors.generic"))
}

func TestUnknownLanguageUsesDefault(t *testing.T) {
	m, err := LoadFromDir(writeLocales(t), "ru")
	require.NoError(t, err)

	tr := m.Translator("de")
	assert.Equal(t, "ru", tr.Lang())
}

func TestMissingDefaultLanguageFails(t *testing.T) {
	_, err := LoadFromDir(writeLocales(t), "fr")
	assert.Error(t, err)
}
