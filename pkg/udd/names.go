package udd

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/debver"
)

// debianName maps a crate name to its Debian spelling.
func debianName(crate string) string {
	return strings.ToLower(strings.ReplaceAll(crate, "_", "-"))
}

// PackageNames returns the binary package names a crate version may be
// shipped under: librust-<name>-dev and librust-<name>-<suffix>-dev.
func PackageNames(crate string, v *semver.Version) []string {
	n := debianName(crate)
	return []string{
		"librust-" + n + "-dev",
		"librust-" + n + "-" + debver.Suffix(v) + "-dev",
	}
}

// SourceNames returns the source package names a crate version may be
// shipped under: rust-<name> and rust-<name>-<suffix>.
func SourceNames(crate string, v *semver.Version) []string {
	n := debianName(crate)
	return []string{
		"rust-" + n,
		"rust-" + n + "-" + debver.Suffix(v),
	}
}

// providesPattern matches name as a whole entry of a Provides field such
// as "librust-foo-dev (= 1.2.3-1), librust-foo+std-dev (= 1.2.3-1)".
func providesPattern(name string) string {
	return `(^|[ ,])` + regexp.QuoteMeta(name) + `([ ,]|$)`
}
