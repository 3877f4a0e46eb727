package debver

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/errors"
)

// Op is a comparator operator in a cargo version requirement.
type Op int

const (
	OpCaret Op = iota // "^" or no operator
	OpExact           // "="
	OpGreater
	OpGreaterEq
	OpLess
	OpLessEq
	OpTilde
	OpWildcard // "*"
)

var opPrefixes = []struct {
	text string
	op   Op
}{
	{">=", OpGreaterEq},
	{"<=", OpLessEq},
	{">", OpGreater},
	{"<", OpLess},
	{"=", OpExact},
	{"~", OpTilde},
	{"^", OpCaret},
}

func (o Op) String() string {
	switch o {
	case OpExact:
		return "="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpTilde:
		return "~"
	case OpWildcard:
		return "*"
	default:
		return "^"
	}
}

// Comparator is one clause of a requirement. Minor and Patch are nil when
// the clause leaves them unspecified ("^1", ">=0.3").
type Comparator struct {
	Op    Op
	Major uint64
	Minor *uint64
	Patch *uint64
	Pre   string
}

func (c Comparator) String() string {
	if c.Op == OpWildcard {
		return "*"
	}
	var b strings.Builder
	b.WriteString(c.Op.String())
	b.WriteString(formatUint(c.Major))
	if c.Minor != nil {
		b.WriteByte('.')
		b.WriteString(formatUint(*c.Minor))
		if c.Patch != nil {
			b.WriteByte('.')
			b.WriteString(formatUint(*c.Patch))
			if c.Pre != "" {
				b.WriteByte('-')
				b.WriteString(c.Pre)
			}
		}
	}
	return b.String()
}

// Requirement is a parsed cargo version requirement such as "^1.2",
// ">=0.3, <0.5" or "=1.0.0-alpha.9". A comparator without an operator
// has caret semantics, as in Cargo.toml.
type Requirement struct {
	Comparators []Comparator
	constraint  *semver.Constraints
}

// ParseRequirement parses a comma separated list of comparators.
func ParseRequirement(raw string) (*Requirement, error) {
	fields := strings.Split(raw, ",")
	req := &Requirement{Comparators: make([]Comparator, 0, len(fields))}
	clauses := make([]string, 0, len(fields))

	for _, field := range fields {
		c, err := parseComparator(strings.TrimSpace(field))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "parse requirement %q", raw)
		}
		req.Comparators = append(req.Comparators, c)
		clauses = append(clauses, c.String())
	}

	constraint, err := semver.NewConstraint(strings.Join(clauses, ", "))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "parse requirement %q", raw)
	}
	req.constraint = constraint
	return req, nil
}

func parseComparator(s string) (Comparator, error) {
	if s == "" {
		return Comparator{}, errors.New(errors.ErrCodeVersionParse, "empty comparator")
	}
	if s == "*" {
		return Comparator{Op: OpWildcard}, nil
	}

	c := Comparator{Op: OpCaret}
	for _, p := range opPrefixes {
		if strings.HasPrefix(s, p.text) {
			c.Op = p.op
			s = strings.TrimSpace(s[len(p.text):])
			break
		}
	}

	s, _, _ = strings.Cut(s, "+")
	core, pre, hasPre := strings.Cut(s, "-")
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return Comparator{}, errors.New(errors.ErrCodeVersionParse, "too many components in %q", s)
	}

	nums := make([]*uint64, 0, 3)
	for _, part := range parts {
		if part == "*" || part == "x" || part == "X" {
			break
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Comparator{}, errors.Wrap(errors.ErrCodeVersionParse, err, "invalid component %q", part)
		}
		nums = append(nums, &n)
	}

	switch len(nums) {
	case 0:
		return Comparator{Op: OpWildcard}, nil
	case 3:
		c.Patch = nums[2]
		fallthrough
	case 2:
		c.Minor = nums[1]
		fallthrough
	default:
		c.Major = *nums[0]
	}
	if hasPre {
		if c.Patch == nil {
			return Comparator{}, errors.New(errors.ErrCodeVersionParse, "pre-release on partial version %q", s)
		}
		c.Pre = pre
	}
	return c, nil
}

// CaretRequirement returns the requirement "^v" a crate version puts on
// its own packaging.
func CaretRequirement(v *semver.Version) *Requirement {
	req, err := ParseRequirement("^" + v.String())
	if err != nil {
		panic(err) // a valid version always yields a valid requirement
	}
	return req
}

// RelaxedRequirement returns "^<Suffix(v)>", which accepts any version of
// the same compatible series.
func RelaxedRequirement(v *semver.Version) *Requirement {
	req, err := ParseRequirement("^" + Suffix(v))
	if err != nil {
		panic(err)
	}
	return req
}

// Matches reports whether v satisfies every comparator.
func (r *Requirement) Matches(v *semver.Version) bool {
	return r.constraint.Check(v)
}

// TooRecent reports whether v is at least as new as every comparator.
// Each comparator compares major, then minor and patch when given, then the
// pre-release tag; the first differing field decides.
func (r *Requirement) TooRecent(v *semver.Version) bool {
	for _, c := range r.Comparators {
		if !atLeastAsNew(v, c) {
			return false
		}
	}
	return true
}

func atLeastAsNew(v *semver.Version, c Comparator) bool {
	if c.Op == OpWildcard {
		return true
	}
	if v.Major() != c.Major {
		return v.Major() > c.Major
	}
	if c.Minor == nil {
		return true
	}
	if v.Minor() != *c.Minor {
		return v.Minor() > *c.Minor
	}
	if c.Patch == nil {
		return true
	}
	if v.Patch() != *c.Patch {
		return v.Patch() > *c.Patch
	}
	switch {
	case c.Pre == "":
		return v.Prerelease() == ""
	case v.Prerelease() == "":
		return true
	default:
		return semver.New(0, 0, 0, v.Prerelease(), "").Compare(semver.New(0, 0, 0, c.Pre, "")) >= 0
	}
}

func (r *Requirement) String() string {
	parts := make([]string, len(r.Comparators))
	for i, c := range r.Comparators {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Compatible reports whether the Debian version distro satisfies req.
func Compatible(distro string, req *Requirement) (bool, error) {
	v, err := Normalize(distro)
	if err != nil {
		return false, err
	}
	return req.Matches(v), nil
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
