package deps

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/agentx-labs/monogen/internal/errors"
)

// packageNamePattern is the PEP 508 distribution name, with optional extras.
var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?(?:\[[A-Za-z0-9._,-]+\])?$`)

// ValidatePackageName rejects names the dependency manager would not accept.
func ValidatePackageName(name string) error {
	if !packageNamePattern.MatchString(name) {
		return errors.Newf(errors.EUsage, "invalid package name %q", name)
	}
	return nil
}

// pep440Version is a PEP 440 public version with an optional local label.
const pep440Version = `v?(?:\d+!)?\d+(?:\.\d+)*` +
	`(?:[-_.]?(?:a|b|c|rc|alpha|beta|pre|preview)[-_.]?\d*)?` +
	`(?:(?:-\d+)|(?:[-_.]?(?:post|rev|r)[-_.]?\d*))?` +
	`(?:[-_.]?dev[-_.]?\d*)?` +
	`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?`

var (
	exactVersionPattern = regexp.MustCompile(`(?i)^` + pep440Version + `$`)
	specifierPattern    = regexp.MustCompile(`(?i)^(?:~=|===|==|!=|<=|>=|<|>)?\s*(?:` + pep440Version + `(?:\.\*)?|\*)$`)
)

// NormalizeVersion validates a version or constraint and returns it trimmed,
// with a leading "v" removed from exact versions. "latest" and the empty
// string pass through unchanged.
//
// Clauses follow PEP 440 (==2.31.0, ~=1.4, 2.0.0rc1, 1.0.post1, !=1.5.*)
// or Poetry's caret and tilde forms (^1.2, ~0.12), comma separated.
func NormalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "latest" {
		return v, nil
	}
	if exactVersionPattern.MatchString(v) {
		return strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V"), nil
	}
	for _, clause := range strings.Split(v, ",") {
		if err := validateClause(strings.TrimSpace(clause)); err != nil {
			return "", errors.WrapWithDetails(errors.EInvalidVersion,
				"version "+v+" is neither a version nor a constraint", err,
				map[string]string{"version": v, "clause": clause})
		}
	}
	return v, nil
}

func validateClause(c string) error {
	switch {
	case c == "":
		return errors.New(errors.EInvalidVersion, "empty clause")
	case strings.HasPrefix(c, "^"), strings.HasPrefix(c, "~") && !strings.HasPrefix(c, "~="):
		_, err := semver.NewConstraint(c)
		return err
	case specifierPattern.MatchString(c):
		return nil
	}
	return errors.Newf(errors.EInvalidVersion, "%q is not a PEP 440 specifier", c)
}
