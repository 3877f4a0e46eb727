// Package pkg provides the libraries behind cargo-debstatus.
//
// # Overview
//
// cargo-debstatus reads the dependency graph of a cargo workspace and reports,
// for every crate, whether Debian already ships a compatible version. The
// libraries are split by stage:
//
//  1. [cargo] - run `cargo metadata` and decode its JSON
//  2. [graph] - arena dependency graph with workspace root selection
//  3. [udd] - query the Ultimate Debian Database and score versions
//  4. [classify] - classify every crate with a pool of database connections
//  5. [filter] - prune the graph to crates blocked on missing dependencies
//  6. [render] - print the annotated tree, JSON lines, DOT or SVG
//
// Supporting packages: [debver] compares Debian versions, [cache] stores
// classifications for 90 minutes, [errors] carries error codes and
// [observability] exposes run hooks for metrics.
//
// # Data Flow
//
//	cargo metadata
//	      ↓
//	  [graph].Build
//	      ↓
//	  [classify].Run  →  [udd].Resolver  →  [cache]
//	      ↓
//	  [filter].Apply
//	      ↓
//	  [render] tree / json / dot / svg
package pkg
