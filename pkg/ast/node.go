// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ast defines the tagged tree node the builders produce, the
// merger rewrites, and the serialiser renders.
package ast

import (
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// Flag is a bitset over both edit flags (diff-only) and kind flags
// (always exactly one set). The set of flags is closed and small, so a
// plain uint16 with predicate helpers is all the dispatch this needs.
type Flag uint16

const (
	// Edit flags.
	Noop Flag = 1 << iota
	Insert
	Rename
	Redefine
	Delete

	// Kind flags. Exactly one is set per node.
	Import
	Export
	SubScope
	SubDeclaration
	Use
	Function
	Include
	Vardecl
)

const editMask = Noop | Insert | Rename | Redefine | Delete
const kindMask = Import | Export | SubScope | SubDeclaration | Use | Function | Include | Vardecl

// Any reports whether any of the given flags are set.
func (f Flag) Any(flags Flag) bool { return f&flags != 0 }

// All reports whether every one of the given flags is set.
func (f Flag) All(flags Flag) bool { return f&flags == flags }

// Only reports whether f's edit-flag bits are exactly flags (ignoring
// the kind bit, which is orthogonal).
func (f Flag) Only(flags Flag) bool { return f.Edits() == flags }

// None reports whether none of the given flags are set.
func (f Flag) None(flags Flag) bool { return f&flags == 0 }

// Edits returns just the edit-flag bits of f.
func (f Flag) Edits() Flag { return f & editMask }

// Kind returns just the kind-flag bit of f.
func (f Flag) Kind() Flag { return f & kindMask }

// Node is a single tagged AST element. sig_id/new_sig_id/compare_sig_id/
// order_sig_id are string-cache handles rather than raw strings so that
// copying or comparing nodes never touches the source text.
type Node struct {
	SigID        uint32
	NewSigID     uint32
	CompareSigID uint32
	OrderSigID   uint32
	Flags        Flag
	Order        uint32
	SourceLine   int
	Children     []*Node
}

// NewNode interns sig and compareSig into cache and returns a node with
// NewSigID set to strcache.NullID (no rename/redefine payload) and
// OrderSigID equal to CompareSigID, per spec.md §3.
func NewNode(cache *strcache.Cache, kind Flag, sig, compareSig string, line int) *Node {
	sigID := cache.FindOrAdd(sig)
	cmpID := cache.FindOrAdd(compareSig)
	return &Node{
		SigID:        sigID,
		NewSigID:     strcache.NullID,
		CompareSigID: cmpID,
		OrderSigID:   cmpID,
		Flags:        kind,
		SourceLine:   line,
	}
}

// CanHaveChildren reports whether kind is one of the kinds the grammar
// allows to nest children (SubScope, SubDeclaration, Function).
func CanHaveChildren(kind Flag) bool {
	return kind.Any(SubScope | SubDeclaration | Function)
}

// ValidateInvariants checks the per-kind edit-flag restrictions from
// spec.md §3. isRootSubScope additionally forbids Insert/Rename/Delete on
// the scr dialect's single root sub.
func ValidateInvariants(n *Node, isRootSubScope bool) error {
	edits := n.Flags.Edits()
	if edits.All(Insert | Delete) {
		return errInvariant(n, "Insert is mutually exclusive with Delete")
	}
	if edits.Any(Insert) && edits.Any(Rename|Redefine) {
		return errInvariant(n, "Insert is mutually exclusive with Rename/Redefine")
	}
	kind := n.Flags.Kind()
	if !CanHaveChildren(kind) && len(n.Children) > 0 {
		return errInvariant(n, "this kind must not have children")
	}
	switch kind {
	case Import:
		if edits.Any(Delete | Insert | Redefine) {
			return errInvariant(n, "imports cannot be Delete|Insert|Redefine")
		}
	case Export:
		if edits.Any(Delete | Insert | Rename) {
			return errInvariant(n, "exports cannot be Delete|Insert|Rename")
		}
	case SubDeclaration:
		if edits.Any(Delete | Insert | Rename) {
			return errInvariant(n, "sub declarations cannot be Delete|Insert|Rename")
		}
	case Vardecl:
		if edits.Any(Insert) {
			return errInvariant(n, "variable declarations cannot be Insert")
		}
	case Include:
		if edits.Any(Delete | Insert | Redefine) {
			return errInvariant(n, "includes cannot be Delete|Insert|Redefine")
		}
	case SubScope:
		if isRootSubScope && edits.Any(Insert|Rename|Delete) {
			return errInvariant(n, "the scr root sub cannot be Insert, Rename or Delete")
		}
	}
	return nil
}

// errInvariant builds the Semantic PatchError spec.md §7 calls for on an
// edit-flag or nesting invariant violation (§3's "Invariants" list).
func errInvariant(n *Node, msg string) error {
	return patcherrors.At(patcherrors.Semantic, n.SourceLine, msg)
}
