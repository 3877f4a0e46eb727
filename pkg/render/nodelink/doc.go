// Package nodelink exports an annotated dependency graph as a Graphviz
// diagram.
//
// Unlike the tree printer, a node-link diagram shows every package once and
// draws shared dependencies as joins:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are filled by packaging tier: green when the crate is in sid, blue
// when it waits in the NEW queue, yellow when the Debian version needs an
// update and red when it is missing.
package nodelink
