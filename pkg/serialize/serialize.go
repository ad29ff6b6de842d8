// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package serialize renders a merged, ordered tree back to source text.
package serialize

import (
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// noTerminatorKinds never get a trailing ';' when they have no children;
// every other childless kind, Export included, is rendered with a ';'
// after its canonical signature.
var noTerminatorKinds = ast.Import | ast.Include | ast.Vardecl

// Tree renders the top-level sequence of nodes, one per line, joined
// with '\n'. This is the entry point the merger's result feeds into.
func Tree(nodes []*ast.Node, cache *strcache.Cache) string {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = node(n, 0, cache)
	}
	return strings.Join(lines, "\n")
}

// node renders a single node at the given indentation depth.
func node(n *ast.Node, depth int, cache *strcache.Cache) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteString(cache.FindValue(n.SigID))

	if len(n.Children) == 0 {
		if n.Flags.Kind()&noTerminatorKinds == 0 {
			b.WriteByte(';')
		}
		return b.String()
	}

	b.WriteString(" {\n")
	childLines := make([]string, len(n.Children))
	for i, c := range n.Children {
		childLines[i] = node(c, depth+1, cache)
	}
	b.WriteString(strings.Join(childLines, "\n"))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteByte('}')
	return b.String()
}
