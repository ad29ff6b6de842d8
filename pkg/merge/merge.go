// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package merge implements the tree merger: matching diff nodes to
// target nodes by compare signature and applying their edit flags
// (Noop/Insert/Rename/Redefine/Delete) to produce the patched tree.
package merge

import (
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/order"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/sigparse"
	"github.com/kraklabs/scriptpatch/pkg/sinks"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// Scr merges a scr dialect diff into its target: imports, exports, then
// the single root sub scope.
func Scr(cache *strcache.Cache, target, diff []*ast.Node, logger sinks.Logger) ([]*ast.Node, error) {
	result, err := mergeSequence(cache, target, diff, logger)
	if err != nil {
		return nil, err
	}
	result = order.Segregate(result, ast.Import, ast.Export)
	order.OrderWithinKind(result, target, ast.Import)
	order.OrderWithinKind(result, target, ast.Export)
	return result, nil
}

// Def merges a def dialect diff into its target: exports only.
func Def(cache *strcache.Cache, target, diff []*ast.Node, logger sinks.Logger) ([]*ast.Node, error) {
	result, err := mergeSequence(cache, target, diff, logger)
	if err != nil {
		return nil, err
	}
	order.OrderWithinKind(result, target, ast.Export)
	return result, nil
}

// Loot merges a loot dialect diff into its target: imports, exports,
// then sub declarations (matched by compare signature, falling back to
// name-only matching for diff sub declarations that omit typed params).
func Loot(cache *strcache.Cache, target, diff []*ast.Node, logger sinks.Logger) ([]*ast.Node, error) {
	result, err := mergeSequence(cache, target, diff, logger)
	if err != nil {
		return nil, err
	}
	result = order.Segregate(result, ast.Import, ast.Export)
	order.OrderWithinKind(result, target, ast.Import)
	order.OrderWithinKind(result, target, ast.Export)
	order.OrderWithinKind(result, target, ast.SubDeclaration)
	return result, nil
}

// Varlist merges a varlist.scr diff into its target: includes and
// variable declarations.
func Varlist(cache *strcache.Cache, target, diff []*ast.Node, logger sinks.Logger) ([]*ast.Node, error) {
	result, err := mergeSequence(cache, target, diff, logger)
	if err != nil {
		return nil, err
	}
	result = order.Segregate(result, ast.Include, ast.Vardecl)
	order.OrderWithinKind(result, target, ast.Include)
	order.OrderWithinKind(result, target, ast.Vardecl)
	return result, nil
}

// matchKey folds a node's kind and compare signature into one lookup
// key: compare signatures are only meaningful for matching within the
// same kind, so the kind bit rules out an accidental cross-kind
// collision on the interned string id.
func matchKey(n *ast.Node) uint64 {
	return uint64(n.Flags.Kind())<<32 | uint64(n.CompareSigID)
}

// mergeSequence is the core per-level algorithm, used both for a
// dialect's top-level sequence and for any scope's children: each diff
// node is matched against an unconsumed target node by compare
// signature (with a name-only fallback for loot sub declarations), the
// match is merged or dropped per its edit flags, and every target node
// the diff never mentioned is carried over unchanged. The caller is
// responsible for re-ordering the returned slice with pkg/order — this
// pass only decides IDENTITY and SURVIVAL, not final position.
func mergeSequence(cache *strcache.Cache, target, diff []*ast.Node, logger sinks.Logger) ([]*ast.Node, error) {
	logger = sinks.DefaultLogger(logger)
	consumed := make([]bool, len(target))
	byKey := make(map[uint64]int, len(target))
	byName := make(map[string]int)
	for i, t := range target {
		byKey[matchKey(t)] = i
		if t.Flags.Kind() == ast.SubDeclaration {
			byName[sigparse.SubDeclBaseName(cache.FindValue(t.CompareSigID))] = i
		}
	}

	var result []*ast.Node
	for _, d := range diff {
		idx, found := byKey[matchKey(d)]
		if !found && d.Flags.Kind() == ast.SubDeclaration {
			idx, found = byName[sigparse.SubDeclBaseName(cache.FindValue(d.CompareSigID))]
		}

		switch {
		case found && consumed[idx]:
			return nil, patcherrors.At(patcherrors.Semantic, d.SourceLine,
				"diff node matches a target entry already claimed by an earlier diff node")
		case found:
			consumed[idx] = true
			if d.Flags.Any(ast.Delete) {
				continue
			}
			merged, err := mergeNode(cache, target[idx], d, logger)
			if err != nil {
				return nil, err
			}
			result = append(result, merged)
		case d.Flags.Any(ast.Delete):
			// A delete miss degrades to a warning; the parse continues
			// as if this diff entry had never been mentioned.
			logger.Warn("merge.delete_miss", "line", d.SourceLine, "sig", cache.FindValue(d.SigID))
		case d.Flags.Any(ast.Insert):
			result = append(result, d)
		default:
			return nil, patcherrors.At(patcherrors.Match, d.SourceLine,
				"diff node does not match any target entry and is not marked insert")
		}
	}

	for i, t := range target {
		if !consumed[i] {
			result = append(result, t)
		}
	}
	return result, nil
}

// scalarRedefineKinds are the leaf kinds whose Redefine payload
// (new_sig_id) replaces the signature rather than the child block: a
// Vardecl payload is a whole new declaration, an Export payload is just
// the new value, which mergeNode joins onto the export's compare
// signature.
const scalarRedefineKinds = ast.Export | ast.Vardecl

// mergeNode merges one matched (target, diff) pair that survives
// (Delete is handled by the caller before this is reached).
func mergeNode(cache *strcache.Cache, t, d *ast.Node, logger sinks.Logger) (*ast.Node, error) {
	if d.Flags.Any(ast.Insert) {
		return nil, patcherrors.At(patcherrors.Semantic, d.SourceLine,
			"insert is not valid on a diff node that matches an existing target entry")
	}

	result := &ast.Node{
		Flags:        t.Flags.Kind(),
		SourceLine:   d.SourceLine,
		CompareSigID: t.CompareSigID,
		OrderSigID:   t.CompareSigID,
	}

	if d.Flags.Any(ast.Redefine) && result.Flags.Any(scalarRedefineKinds) {
		result.SigID = d.NewSigID
		if result.Flags.Kind() == ast.Export {
			result.SigID = cache.FindOrAdd(cache.FindValue(t.CompareSigID) + " = " + cache.FindValue(d.NewSigID))
		}
		return result, nil
	}

	result.SigID = t.SigID
	if d.Flags.Any(ast.Rename) {
		result.SigID = d.NewSigID
	}

	switch {
	case d.Flags.Any(ast.Redefine):
		// Body redefinition: the diff's own children are the whole new
		// body, taken as written rather than merged against the old one.
		result.Children = d.Children
	case len(d.Children) == 0:
		result.Children = t.Children
	default:
		children, err := mergeSequence(cache, t.Children, d.Children, logger)
		if err != nil {
			return nil, err
		}
		children = order.Segregate(children, ast.Use, ast.Function)
		order.OrderWithinKind(children, t.Children, ast.Use)
		order.OrderWithinKind(children, t.Children, ast.Function)
		result.Children = children
	}
	return result, nil
}
