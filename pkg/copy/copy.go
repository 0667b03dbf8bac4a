// Package copy provides the localized fixed strings rendered to users.
// Dialogue code never hard-codes display text; every reply goes through
// a key lookup with the session's language.
package copy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var translationsYAML []byte

// DefaultLanguage is used when a key is missing for the requested language.
const DefaultLanguage = "en-IN"

// SupportedLanguages lists the locales the table ships with.
var SupportedLanguages = []string{"en-IN", "hi-IN", "mr-IN"}

// Table holds the language -> key -> text mapping.
type Table struct {
	texts map[string]map[string]string
}

// Load parses the embedded translation table.
func Load() (*Table, error) {
	texts := make(map[string]map[string]string)
	if err := yaml.Unmarshal(translationsYAML, &texts); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	if _, ok := texts[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("translations missing default language %s", DefaultLanguage)
	}
	return &Table{texts: texts}, nil
}

// Text returns the string for key in the given language, falling back
// to the default language. An unknown key returns the key itself so a
// missing translation is visible rather than silent.
func (t *Table) Text(key, language string) string {
	if langTexts, ok := t.texts[language]; ok {
		if s, ok := langTexts[key]; ok {
			return s
		}
	}
	if s, ok := t.texts[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// Textf returns the string for key with {placeholder} substitutions applied.
func (t *Table) Textf(key, language string, replacements map[string]string) string {
	s := t.Text(key, language)
	for name, value := range replacements {
		s = strings.ReplaceAll(s, "{"+name+"}", value)
	}
	return s
}

// Normalize maps an arbitrary caller-supplied language tag onto a
// supported one, defaulting when unknown.
func Normalize(language string) string {
	for _, l := range SupportedLanguages {
		if strings.EqualFold(language, l) {
			return l
		}
	}
	return DefaultLanguage
}
