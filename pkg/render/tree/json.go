package tree

import (
	"encoding/json"

	"github.com/matzehuels/debstatus/pkg/graph"
)

// Line is one package of --json output.
type Line struct {
	Name             string  `json:"name"`
	CargoLockVersion string  `json:"cargo_lock_version"`
	Repository       *string `json:"repository"`
	License          *string `json:"license"`
	Debian           *Debian `json:"debian"`
	Depth            int     `json:"depth"`
}

// Debian is the packaging status of a Line, null when unclassified.
type Debian struct {
	Version    string `json:"version"`
	Compatible bool   `json:"compatible"`
	ExactMatch bool   `json:"exact_match"`
	InNew      bool   `json:"in_new"`
	InUnstable bool   `json:"in_unstable"`
	Outdated   bool   `json:"outdated"`
	Newer      bool   `json:"newer"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewLine builds the JSON view of a package printed at depth.
func NewLine(p *graph.Package, depth int) Line {
	l := Line{
		Name:             p.Name,
		CargoLockVersion: p.Version.String(),
		Repository:       optional(p.Repository),
		License:          optional(p.License),
		Depth:            depth,
	}
	if d := p.Debian; d != nil {
		l.Debian = &Debian{
			Version:    d.Version(),
			Compatible: d.Compatible(),
			ExactMatch: d.ExactMatch(),
			InNew:      d.InNew(),
			InUnstable: d.InUnstable(),
			Outdated:   d.Outdated(),
			Newer:      d.Newer(),
		}
	}
	return l
}

func encodeLine(p *graph.Package, depth int) (string, error) {
	b, err := json.Marshal(NewLine(p, depth))
	return string(b), err
}
