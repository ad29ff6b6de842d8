// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package order implements the two orderer routines from spec.md §4.6:
// segregate (stable partition by kind) and order_within_kind (inserted
// nodes first, then survivors in target order).
package order

import (
	"sort"

	"github.com/kraklabs/scriptpatch/pkg/ast"
)

// Segregate stably partitions vec into three runs, in order: nodes of
// kindA, nodes of kindB, then everything else — each run keeping its
// original relative order. This is the direct, allocation-light
// equivalent of the source's three-pass "assign a running rank, then
// sort" technique: appending into three buckets and concatenating them
// produces the identical ordering without needing a throwaway rank
// array or a sort call.
func Segregate(vec []*ast.Node, kindA, kindB ast.Flag) []*ast.Node {
	a := make([]*ast.Node, 0, len(vec))
	b := make([]*ast.Node, 0, len(vec))
	rest := make([]*ast.Node, 0, len(vec))
	for _, n := range vec {
		switch n.Flags.Kind() {
		case kindA:
			a = append(a, n)
		case kindB:
			b = append(b, n)
		default:
			rest = append(rest, n)
		}
	}
	out := make([]*ast.Node, 0, len(vec))
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, rest...)
	return out
}

// OrderWithinKind reorders, in place, just the subsequence of resultVec
// whose kind is kind: inserted nodes (order_sig_id absent from the
// target's base ordering) come first in their result-encounter order,
// followed by surviving target-matched nodes in their original target
// order. targetVec supplies the base ordering.
func OrderWithinKind(resultVec, targetVec []*ast.Node, kind ast.Flag) {
	baseOrder := make(map[uint32]int)
	rank := 0
	for _, t := range targetVec {
		if t.Flags.Kind() == kind {
			baseOrder[t.CompareSigID] = rank
			rank++
		}
	}

	var idxs []int
	for i, n := range resultVec {
		if n.Flags.Kind() == kind {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		return
	}

	newCount := 0
	for _, i := range idxs {
		if _, ok := baseOrder[resultVec[i].OrderSigID]; !ok {
			newCount++
		}
	}

	type ranked struct {
		node *ast.Node
		rank int
	}
	items := make([]ranked, len(idxs))
	newSeq := 0
	for k, i := range idxs {
		n := resultVec[i]
		if r, ok := baseOrder[n.OrderSigID]; ok {
			items[k] = ranked{n, r + newCount}
		} else {
			items[k] = ranked{n, newSeq}
			newSeq++
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].rank < items[j].rank })
	for k, i := range idxs {
		resultVec[i] = items[k].node
	}
}
