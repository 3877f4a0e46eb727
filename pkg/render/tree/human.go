package tree

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/udd"
)

type styles struct {
	green, yellow, red, magenta, blue lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return styles{
		green:   fg("2"),
		yellow:  fg("3"),
		red:     fg("1"),
		magenta: fg("5"),
		blue:    fg("4"),
	}
}

// Icon returns the two-column status marker printed before a package.
func Icon(p *graph.Package) string {
	switch p.Progress() {
	case udd.Available:
		return "  "
	case udd.AvailableInNew:
		return "🆕"
	case udd.NeedsUpdate:
		if p.Debian.Newer() {
			return "🔽"
		}
		return "⌛"
	default:
		return "🔴"
	}
}

// showDependencies reports whether the dependencies of a package are still
// interesting below the root: they are for crates that need packaging or
// whose Debian version is too old.
func showDependencies(p *graph.Package) bool {
	return p.Debian == nil || p.Progress() == udd.Missing || p.Debian.Outdated()
}

func (s styles) describe(p *graph.Package) string {
	pkg := p.Name + " v" + p.Version.String()

	var b strings.Builder
	deb := p.Debian
	switch {
	case deb == nil:
		b.WriteString(pkg)
	case deb.InUnstable():
		switch {
		case deb.Compatible():
			b.WriteString(s.green.Render(pkg) + " (" + s.yellow.Render(deb.Version()) + " in debian)")
		case deb.Outdated():
			b.WriteString(s.yellow.Render(pkg) + " (outdated, " + s.red.Render(deb.Version()) + " in debian)")
		case deb.Newer():
			b.WriteString(s.yellow.Render(pkg) + " (newer, " + s.magenta.Render(deb.Version()) + " in debian)")
		default:
			b.WriteString(s.green.Render(pkg) + " (in debian)")
		}
	case deb.InNew():
		switch {
		case deb.Compatible():
			b.WriteString(s.blue.Render(pkg) + " (" + s.yellow.Render(deb.Version()) + " in debian NEW queue)")
		case deb.Outdated():
			b.WriteString(s.blue.Render(pkg) + " (outdated, " + s.red.Render(deb.Version()) + " in debian NEW queue)")
		case deb.Newer():
			b.WriteString(s.blue.Render(pkg) + " (newer, " + s.magenta.Render(deb.Version()) + " in debian NEW queue)")
		default:
			b.WriteString(s.blue.Render(pkg) + " (in debian NEW queue)")
		}
	default:
		b.WriteString(pkg)
	}

	switch {
	case p.IsPath():
		b.WriteString(" (" + p.ManifestDir() + ")")
	case !p.IsCratesIO():
		b.WriteString(" (" + p.Source + ")")
	}
	return b.String()
}

func (s styles) format(pattern Pattern, p *graph.Package) string {
	var b strings.Builder
	for _, c := range pattern {
		switch c.kind {
		case chunkRaw:
			b.WriteString(c.text)
		case chunkPackage:
			b.WriteString(s.describe(p))
		case chunkLicense:
			b.WriteString(p.License)
		case chunkRepository:
			b.WriteString(p.Repository)
		}
	}
	return b.String()
}
