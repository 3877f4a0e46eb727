// Package render groups the output formats of cargo-debstatus.
//
//   - tree: `cargo tree` style text with a packaging marker per line,
//     or one JSON object per line (--json)
//   - nodelink: Graphviz DOT and SVG export coloured by packaging tier
//
// Both read the annotated graph after classification and
// filtering; neither mutates it.
//
//	if err := tree.Print(os.Stdout, g, tree.Options{Charset: tree.UTF8}); err != nil {
//	    return err
//	}
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package render
