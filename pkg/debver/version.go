// Package debver compares Debian package versions against cargo semver
// requirements.
//
// Debian versions of Rust crates look like "1.0.106-1", "1.0.0~alpha.9-2" or
// "4+20231122+dfsg-1". [Normalize] turns them into strict semver versions so
// they can be matched with the same caret rules cargo uses, including the
// zerover convention where the leftmost non-zero component is the breaking
// one. Everything in this package is pure and free of I/O.
package debver

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/errors"
)

// StripRevision removes a trailing Debian revision ("-1", "-3+b2") from a
// version string. Versions without a revision are returned unchanged.
func StripRevision(distro string) string {
	if i := strings.LastIndexByte(distro, '-'); i >= 0 {
		return distro[:i]
	}
	return distro
}

// StripEpoch removes a leading Debian epoch ("1:") from a version string.
func StripEpoch(distro string) string {
	if _, rest, ok := strings.Cut(distro, ":"); ok {
		return rest
	}
	return distro
}

// Upstream returns the upstream part of a Debian version: no epoch and no
// revision. It is the form shown to users next to a crate.
func Upstream(distro string) string {
	return StripRevision(StripEpoch(distro))
}

// Normalize converts a Debian version into a semver version.
//
// An epoch ("1:") and the Debian revision are dropped, "~" becomes the semver
// pre-release separator, and a "+" suffix is removed with the remaining dotted
// prefix padded to three components. More than three components before a
// "+" is an error.
func Normalize(distro string) (*semver.Version, error) {
	s := strings.ReplaceAll(Upstream(distro), "~", "-")

	if base, _, ok := strings.Cut(s, "+"); ok {
		core, pre, hasPre := strings.Cut(base, "-")
		parts := strings.Split(core, ".")
		if len(parts) > 3 {
			return nil, errors.New(errors.ErrCodeVersionParse,
				"unexpected number of components in version %q", distro)
		}
		for len(parts) < 3 {
			parts = append(parts, "0")
		}
		s = strings.Join(parts, ".")
		if hasPre {
			s += "-" + pre
		}
	}

	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "parse version %q", distro)
	}
	return v, nil
}

// Suffix returns the component that names a semver-compatible series: the
// major version when it is non-zero, "0.minor" when only the minor is
// non-zero, and "0.0.patch" otherwise.
func Suffix(v *semver.Version) string {
	switch {
	case v.Major() > 0:
		return formatUint(v.Major())
	case v.Minor() > 0:
		return "0." + formatUint(v.Minor())
	default:
		return "0.0." + formatUint(v.Patch())
	}
}
