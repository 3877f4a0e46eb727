// Package graph models a cargo dependency graph for packaging analysis.
//
// A [Graph] is an arena: packages live in a dense slice addressed by
// [NodeID] handles, edges live in a second slice, and every vertex keeps
// the indices of its incoming and outgoing edges. Handles stay valid for
// the lifetime of the graph; removing a vertex leaves a tombstone instead
// of shifting later vertices. This lets the classification workers carry
// plain integers in their task messages while the coordinator remains the
// only writer.
//
// # Building
//
// [Build] turns `cargo metadata` output into a graph:
//
//	md, _ := cargo.Load(ctx, cargo.Options{})
//	g, err := graph.Build(md, graph.BuildOptions{CollapseWorkspace: true})
//
// Construction selects roots (--include, --exclude, --collapse-workspace)
// and then prunes every vertex that is not reachable from a surviving root.
//
// # Traversal
//
// All traversals are iterative, so cyclic graphs (dev-dependency loops are
// legal in cargo) never grow the goroutine stack.
package graph
