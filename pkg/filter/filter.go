// Package filter narrows an annotated dependency graph to what still needs
// packaging work.
package filter

import (
	"strings"

	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// Filter is a graph filter selected with --filter.
type Filter int

const (
	// All keeps every dependency.
	All Filter = iota
	// Missing keeps only edges between packages that are, or depend on,
	// packages absent from both sid and the NEW queue. Missing dependencies
	// of crates whose Debian version needs updating are ignored.
	Missing
)

func (f Filter) String() string {
	if f == Missing {
		return "missing"
	}
	return "all"
}

// Parse parses a filter name.
func Parse(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return All, nil
	case "missing":
		return Missing, nil
	}
	return All, errors.New(errors.ErrCodeInvalidInput, "invalid filter %q (expected all or missing)", s)
}

// ParseList parses a comma separated list of filter names.
func ParseList(s string) ([]Filter, error) {
	var filters []Filter
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := Parse(part)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Run applies the filter to g in place.
func (f Filter) Run(g *graph.Graph) {
	if f != Missing {
		return
	}
	missing := HasMissing(g)
	g.RetainEdges(func(e graph.Edge) bool {
		return missing[e.From] && missing[e.To]
	})
}

// Apply runs filters in order.
func Apply(g *graph.Graph, filters []Filter) {
	for _, f := range filters {
		f.Run(g)
	}
}

// walkKinds are the edge kinds a missing dependency propagates along.
var walkKinds = []graph.Kind{graph.KindBuild, graph.KindDevelopment}

type frame struct {
	id      graph.NodeID
	deps    []graph.NodeID
	next    int
	missing bool
}

// HasMissing computes, for every live vertex, whether it or anything it
// reaches over build and dev edges is missing from Debian. A vertex whose
// Debian version needs updating is always false. Back edges of a cycle
// contribute false.
func HasMissing(g *graph.Graph) map[graph.NodeID]bool {
	memo := make(map[graph.NodeID]bool, g.Len())
	onStack := make(map[graph.NodeID]bool)

	push := func(stack []frame, id graph.NodeID) []frame {
		onStack[id] = true
		return append(stack, frame{
			id:      id,
			deps:    g.Neighbors(id, graph.Outgoing, walkKinds...),
			missing: !g.Node(id).InDebian(),
		})
	}

	for _, start := range g.Nodes() {
		if _, done := memo[start]; done {
			continue
		}
		stack := push(nil, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.deps) {
				dep := top.deps[top.next]
				top.next++
				if v, done := memo[dep]; done {
					top.missing = top.missing || v
				} else if !onStack[dep] {
					stack = push(stack, dep)
				}
				continue
			}

			result := top.missing
			if g.Node(top.id).Progress() == udd.NeedsUpdate {
				result = false
			}
			memo[top.id] = result
			delete(onStack, top.id)
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				parent.missing = parent.missing || result
			}
		}
	}
	return memo
}
