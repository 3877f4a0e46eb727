package udd

import (
	"fmt"
)

// Status is the outcome of matching a crate version against one release.
// The zero value is NotFound, and larger values are better matches.
type Status int

const (
	// NotFound means no package of that name exists in the release.
	NotFound Status = iota
	// Outdated means only an incompatible, older series is packaged.
	Outdated
	// TooRecent means only an incompatible, newer series is packaged.
	TooRecent
	// Compatible means a semver-compatible but lower version is packaged.
	Compatible
	// Found means a version satisfying ^crate-version is packaged.
	Found
)

var statusNames = [...]string{
	NotFound:   "not-found",
	Outdated:   "outdated",
	TooRecent:  "too-recent",
	Compatible: "compatible",
	Found:      "found",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Match is the classification of a crate version in one release.
// Version is the matched Debian version without its revision, empty
// for NotFound.
type Match struct {
	Status  Status `json:"status"`
	Version string `json:"version,omitempty"`
}

// Progress is the packaging tier shown to the user.
type Progress int

const (
	// Available means the crate is usable from sid.
	Available Progress = iota
	// AvailableInNew means the crate is waiting in the NEW queue.
	AvailableInNew
	// NeedsUpdate means Debian ships an incompatible version.
	NeedsUpdate
	// Missing means the crate is not packaged at all.
	Missing
)

func (p Progress) String() string {
	switch p {
	case Available:
		return "available"
	case AvailableInNew:
		return "available-in-new"
	case NeedsUpdate:
		return "needs-update"
	default:
		return "missing"
	}
}

// Info combines the sid and NEW queue matches of one crate version.
// New is only queried when the crate is absent from sid.
type Info struct {
	Unstable Match `json:"unstable"`
	New      Match `json:"new"`
}

// InUnstable reports whether any version of the crate is in sid.
func (i *Info) InUnstable() bool { return i.Unstable.Status != NotFound }

// InNew reports whether any version of the crate is in the NEW queue.
func (i *Info) InNew() bool { return i.New.Status != NotFound }

// Current returns the sid match when the crate is in sid and the NEW
// queue match otherwise.
func (i *Info) Current() Match {
	if i.InUnstable() {
		return i.Unstable
	}
	return i.New
}

// Version returns the matched Debian version, if any.
func (i *Info) Version() string { return i.Current().Version }

// Outdated reports whether Debian only has an older incompatible series.
func (i *Info) Outdated() bool { return i.Current().Status == Outdated }

// Newer reports whether Debian only has a newer incompatible series.
func (i *Info) Newer() bool { return i.Current().Status == TooRecent }

// Compatible reports whether Debian has a compatible version that is
// lower than the requested one.
func (i *Info) Compatible() bool { return i.Current().Status == Compatible }

// ExactMatch reports whether Debian satisfies ^crate-version.
func (i *Info) ExactMatch() bool { return i.Current().Status == Found }

// Progress derives the packaging tier.
func (i *Info) Progress() Progress {
	switch i.Unstable.Status {
	case Found, Compatible:
		return Available
	case Outdated, TooRecent:
		return NeedsUpdate
	}
	switch i.New.Status {
	case Found, Compatible:
		return AvailableInNew
	case Outdated, TooRecent:
		return NeedsUpdate
	}
	return Missing
}
