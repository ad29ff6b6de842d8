// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package serialize

import (
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// Status categorizes one result node relative to the pre-merge target
// tree, for a human-facing preview render. It is computed by signature
// comparison rather than carried on the node itself, since a merged
// node's edit flags don't survive rename-only merges (see spec.md §4.5:
// only a Redefine sets r.flags = d.flags; a plain rename ends up with
// r.flags = t.flags, indistinguishable from an untouched node by flags
// alone).
type Status int

const (
	// Unchanged means a target node with this compare signature exists
	// and its rendered signature is identical.
	Unchanged Status = iota
	// New means no target node shares this compare signature: the diff
	// inserted it.
	New
	// Changed means a target node with this compare signature exists
	// but the node's own signature differs: a rename or a scalar
	// redefine. A node whose own signature is unchanged is Unchanged
	// even when its children differ; each child carries its own status.
	Changed
)

// PreviewLine is one rendered line of a diff preview: the already
// indented/terminated text plus the status used to color it.
type PreviewLine struct {
	Text   string
	Status Status
}

// TreePreview walks result alongside the pre-merge target tree and
// returns one PreviewLine per node (recursively, depth-first, matching
// Tree's line-per-node shape), so a caller can colorize New/Changed
// lines differently from Unchanged ones without re-deriving identity.
func TreePreview(result, target []*ast.Node, cache *strcache.Cache) []PreviewLine {
	byCompareSig := indexByCompareSig(target)
	var lines []PreviewLine
	for _, n := range result {
		appendPreview(&lines, n, byCompareSig, 0, cache)
	}
	return lines
}

func indexByCompareSig(nodes []*ast.Node) map[uint32]*ast.Node {
	m := make(map[uint32]*ast.Node, len(nodes))
	for _, n := range nodes {
		m[n.CompareSigID] = n
	}
	return m
}

func appendPreview(lines *[]PreviewLine, n *ast.Node, byCompareSig map[uint32]*ast.Node, depth int, cache *strcache.Cache) {
	orig, existed := byCompareSig[n.CompareSigID]
	status := Unchanged
	switch {
	case !existed:
		status = New
	case orig.SigID != n.SigID:
		status = Changed
	}

	head := strings.Repeat("\t", depth) + cache.FindValue(n.SigID)
	if len(n.Children) == 0 {
		if n.Flags.Kind()&noTerminatorKinds == 0 {
			head += ";"
		}
		*lines = append(*lines, PreviewLine{Text: head, Status: status})
		return
	}

	*lines = append(*lines, PreviewLine{Text: head + " {", Status: status})
	childIndex := map[uint32]*ast.Node{}
	if existed {
		childIndex = indexByCompareSig(orig.Children)
	}
	for _, c := range n.Children {
		appendPreview(lines, c, childIndex, depth+1, cache)
	}
	*lines = append(*lines, PreviewLine{Text: strings.Repeat("\t", depth) + "}", Status: Unchanged})
}
