package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentx-labs/monogen/internal/errors"
)

// capitalize upper-cases the first letter of a word. A Caser carries state,
// so one is built per call.
func capitalize(w string) string {
	return cases.Title(language.English).String(w)
}

// Identifier is a normalized user-supplied name.
type Identifier struct {
	Raw       string // as typed, e.g. "Data Pipeline"
	Slug      string // data_pipeline
	ClassName string // DataPipeline
	Title     string // Data Pipeline
}

// pythonKeywords cannot be used as package or function names. The capitalized
// keywords appear lowercased because slugs are compared.
var pythonKeywords = []string{
	"and", "as", "assert", "async", "await", "break", "class", "continue",
	"def", "del", "elif", "else", "except", "false", "finally", "for", "from",
	"global", "if", "import", "in", "is", "lambda", "none", "nonlocal", "not",
	"or", "pass", "raise", "return", "true", "try", "while", "with", "yield",
}

// DefaultReserved holds names of fixed, non-generated monorepo directories
// plus the Python keywords that cannot be used as package names.
var DefaultReserved = append([]string{
	"core", "docs", "scripts", "tests", "tools", "build", "dist", "venv",
}, pythonKeywords...)

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single underscore, trimming underscores at both ends.
// Slugify(Slugify(s)) == Slugify(s) for every s.
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Words splits a slug into its underscore-separated parts.
func Words(slug string) []string {
	if slug == "" {
		return nil
	}
	return strings.Split(slug, "_")
}

// ClassName returns the capitalized concatenation of the slug's words.
func ClassName(slug string) string {
	var b strings.Builder
	for _, w := range Words(slug) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Title returns the slug's words capitalized and joined by spaces.
func Title(slug string) string {
	words := Words(slug)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// Normalize derives every form of raw and validates the slug. reserved is
// compared against the slug; pass nil to use DefaultReserved.
func Normalize(raw string, reserved []string) (Identifier, error) {
	slug := Slugify(raw)
	if slug == "" {
		return Identifier{}, errors.Newf(errors.EInvalidIdentifier,
			"identifier %q normalizes to an empty name", raw)
	}
	if slug[0] < 'a' || slug[0] > 'z' {
		return Identifier{}, errors.Newf(errors.EInvalidIdentifier,
			"identifier %q normalizes to %q, which does not start with a letter", raw, slug)
	}
	if reserved == nil {
		reserved = DefaultReserved
	}
	if IsReserved(slug, reserved) {
		return Identifier{}, errors.Newf(errors.EInvalidIdentifier,
			"identifier %q normalizes to reserved name %q", raw, slug)
	}
	return Identifier{
		Raw:       raw,
		Slug:      slug,
		ClassName: ClassName(slug),
		Title:     Title(slug),
	}, nil
}

// IsReserved reports whether slug matches one of the reserved names after
// normalizing them the same way.
func IsReserved(slug string, reserved []string) bool {
	for _, r := range reserved {
		if Slugify(r) == slug {
			return true
		}
	}
	return false
}
