package scaffold

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agentx-labs/monogen/internal/errors"
)

// tokenPattern matches a placeholder such as {{SLUG}}.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// bracePattern matches anything written in placeholder braces, well-formed
// or not.
var bracePattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Tokens returns the distinct placeholder names in text, sorted.
func Tokens(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// HasPlaceholder reports whether s contains a placeholder token.
func HasPlaceholder(s string) bool {
	return tokenPattern.MatchString(s)
}

// Render substitutes every placeholder in text with its value. Substitution
// is a single pass, so placeholders inside values are not expanded. A token
// without a value is E_TEMPLATE_MISSING_TOKEN, and so is a malformed one such
// as {{slug}} or {{ SLUG }}; name identifies the template in the error.
func Render(name, text string, values map[string]string) (string, error) {
	var malformed []string
	for _, m := range bracePattern.FindAllString(text, -1) {
		if !tokenPattern.MatchString(m) {
			malformed = append(malformed, m)
		}
	}
	if len(malformed) > 0 {
		return "", errors.NewWithDetails(errors.ETemplateMissingToken,
			"template "+name+" has malformed placeholders "+strings.Join(malformed, ", "),
			map[string]string{"template": name, "tokens": strings.Join(malformed, ",")})
	}

	var missing []string
	for _, tok := range Tokens(text) {
		if _, ok := values[tok]; !ok {
			missing = append(missing, tok)
		}
	}
	if len(missing) > 0 {
		return "", errors.NewWithDetails(errors.ETemplateMissingToken,
			"template "+name+" has no value for "+strings.Join(missing, ", "),
			map[string]string{"template": name, "tokens": strings.Join(missing, ",")})
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(m string) string {
		return values[m[2:len(m)-2]]
	}), nil
}
