// Package cargo reads the resolved dependency graph of a cargo workspace.
//
// It runs `cargo metadata --format-version 1` and decodes the subset of its
// output debstatus needs: the package list, the resolve graph with
// per-edge dependency kinds (cargo 1.41 or newer) and the workspace members.
package cargo

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/debstatus/pkg/errors"
)

// PackageID is cargo's opaque package identifier. It encodes name, version
// and source, so two versions of a crate have distinct ids.
type PackageID string

// DependencyKind is the kind of a resolve edge. Normal dependencies are
// reported as null by cargo and decode to the empty string.
type DependencyKind string

const (
	KindNormal      DependencyKind = ""
	KindBuild       DependencyKind = "build"
	KindDevelopment DependencyKind = "dev"
)

// Metadata is the decoded output of `cargo metadata`.
type Metadata struct {
	Packages         []Package   `json:"packages"`
	WorkspaceMembers []PackageID `json:"workspace_members"`
	Resolve          *Resolve    `json:"resolve"`
	WorkspaceRoot    string      `json:"workspace_root"`
	Version          int         `json:"version"`
}

// Package is one entry of the package list.
type Package struct {
	ID           PackageID `json:"id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Source       string    `json:"source"`
	ManifestPath string    `json:"manifest_path"`
	License      string    `json:"license"`
	Repository   string    `json:"repository"`
}

// Sources of crates.io packages (git index and sparse protocol).
const (
	SourceCratesIO       = "registry+https://github.com/rust-lang/crates.io-index"
	SourceCratesIOSparse = "sparse+https://index.crates.io/"
)

// IsCratesIO reports whether source is the crates.io registry.
func IsCratesIO(source string) bool {
	return source == SourceCratesIO || source == SourceCratesIOSparse
}

// IsCratesIO reports whether the package comes from the crates.io registry.
func (p *Package) IsCratesIO() bool { return IsCratesIO(p.Source) }

// IsPath reports whether the package is a local path dependency.
func (p *Package) IsPath() bool { return p.Source == "" }

// ManifestDir returns the directory containing the package's Cargo.toml.
func (p *Package) ManifestDir() string { return filepath.Dir(p.ManifestPath) }

// Resolve is the resolved dependency graph.
type Resolve struct {
	Nodes []Node    `json:"nodes"`
	Root  PackageID `json:"root"`
}

// Node lists the resolved dependencies of one package. Dependencies holds
// plain ids; Deps carries the per-edge kinds and must be the same length.
type Node struct {
	ID           PackageID   `json:"id"`
	Dependencies []PackageID `json:"dependencies"`
	Deps         []NodeDep   `json:"deps"`
}

// NodeDep is one resolved dependency edge.
type NodeDep struct {
	Name     string        `json:"name"`
	Pkg      PackageID     `json:"pkg"`
	DepKinds []DepKindInfo `json:"dep_kinds"`
}

// DepKindInfo is one (kind, platform) pair of a dependency edge.
type DepKindInfo struct {
	Kind   DependencyKind `json:"kind"`
	Target string         `json:"target"`
}

// Decode reads `cargo metadata --format-version 1` output.
func Decode(r io.Reader) (*Metadata, error) {
	var md Metadata
	if err := json.NewDecoder(r).Decode(&md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "decode cargo metadata")
	}
	if md.Version != 0 && md.Version != 1 {
		return nil, errors.New(errors.ErrCodeInvalidMetadata, "unsupported cargo metadata format version %d", md.Version)
	}
	return &md, nil
}

// DecodeString is a convenience wrapper around Decode.
func DecodeString(s string) (*Metadata, error) {
	return Decode(strings.NewReader(s))
}
