// Package registration describes the extended profile fields added to the LMS registration form.
package registration

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/nelc/eoxnelp/core"
)

var ErrUnknownField = errors.New("unknown registration field")

// FormField is the definition of a registration form field.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Registry holds the configured extended profile fields and their translated labels.
type Registry struct {
	fields       []string
	known        map[string]bool
	langs        []string
	matcher      language.Matcher
	translations map[string]map[string]string
}

func NewRegistry(conf core.RegistrationConfig) *Registry {
	r := &Registry{
		fields:       make([]string, 0, len(conf.ExtendedProfileFields)),
		known:        make(map[string]bool),
		translations: make(map[string]map[string]string),
	}
	for _, name := range conf.ExtendedProfileFields {
		if !r.known[name] {
			r.known[name] = true
			r.fields = append(r.fields, name)
		}
	}

	for lang := range conf.Translations {
		if _, err := language.Parse(lang); err == nil {
			r.langs = append(r.langs, lang)
		}
	}
	// the matcher's first tag is its fallback, keep it deterministic
	sort.Strings(r.langs)
	tags := make([]language.Tag, 0, len(r.langs))
	for _, lang := range r.langs {
		r.translations[lang] = conf.Translations[lang]
		tags = append(tags, language.MustParse(lang))
	}
	if len(tags) > 0 {
		r.matcher = language.NewMatcher(tags)
	}
	return r
}

// Fields returns the configured field names in configuration order.
func (r *Registry) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Field builds the form field for a configured name, labelled in lang.
func (r *Registry) Field(name, lang string, required bool) (FormField, error) {
	if !r.known[name] {
		return FormField{}, errors.Wrap(ErrUnknownField, name)
	}
	label := name
	if translated, ok := r.labels(lang)[name]; ok && translated != "" {
		label = translated
	}
	return FormField{Name: name, Label: capitalize(label), Type: "text", Required: required}, nil
}

// Form builds every configured field.
func (r *Registry) Form(lang string, required bool) []FormField {
	form := make([]FormField, 0, len(r.fields))
	for _, name := range r.fields {
		f, _ := r.Field(name, lang, required)
		form = append(form, f)
	}
	return form
}

func (r *Registry) labels(lang string) map[string]string {
	if labels, ok := r.translations[lang]; ok {
		return labels
	}
	if r.matcher == nil || lang == "" {
		return nil
	}
	// accepts a single tag or an Accept-Language header value
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return nil
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return nil
	}
	return r.translations[r.langs[idx]]
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
