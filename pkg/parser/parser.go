// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parser implements the mutex-guarded facade that drives one
// diff/target pair from raw text through to patched output: SetDiff,
// SetTarget, GetTargetPath, Parse, Reset.
package parser

import (
	"sync"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/builder"
	"github.com/kraklabs/scriptpatch/pkg/merge"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/serialize"
	"github.com/kraklabs/scriptpatch/pkg/sinks"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// Parser is a single-threaded-per-instance component: one parse (set
// diff, set target, parse) runs to completion before another can start
// on the same instance. A single mutex guards every exported method so
// concurrent callers serialise rather than race on the shared tree
// state; nothing inside a parse itself is concurrent.
type Parser struct {
	mu sync.Mutex

	cache   *strcache.Cache
	logger  sinks.Logger
	dialect ast.FileType

	targetPath string
	diff       []*ast.Node
	target     []*ast.Node
}

// New builds a Parser with its own (non-thread-safe) string cache,
// which is safe only because every access happens under mu.
func New(logger sinks.Logger) *Parser {
	return &Parser{
		cache:  strcache.New(),
		logger: sinks.DefaultLogger(logger),
	}
}

// SetDiff parses raw as a diff file and clears all parser state first:
// the target, target path, dialect and string cache from any previous
// parse are discarded.
func (p *Parser) SetDiff(raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.target = nil
	p.diff = nil
	p.targetPath = ""
	p.dialect = ast.Invalid
	p.cache.Reset()

	path, _ := builder.SplitDiffHeader(raw)
	dialect, err := ast.DeduceFileType(path)
	if err != nil {
		return patcherrors.Wrap(patcherrors.Syntax, 1, "cannot deduce dialect from diff header", err)
	}

	nodes, err := builder.BuildDiff(p.cache, dialect, raw)
	if err != nil {
		return err
	}

	if nodes == nil {
		// An empty diff is still a set diff; nil is reserved for "no diff".
		nodes = []*ast.Node{}
	}
	p.dialect = dialect
	p.targetPath = path
	p.diff = nodes
	return nil
}

// SetTarget parses raw as a target file of the dialect SetDiff already
// deduced. It clears only the previous target, not the diff.
func (p *Parser) SetTarget(raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.diff == nil {
		return patcherrors.New(patcherrors.Internal, "SetTarget called before SetDiff")
	}
	p.target = nil

	nodes, err := builder.BuildTarget(p.cache, p.dialect, raw)
	if err != nil {
		return err
	}
	p.target = nodes
	return nil
}

// GetTargetPath returns the path the diff's header line declared.
func (p *Parser) GetTargetPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targetPath
}

// Parse merges the current diff against the current target and
// renders the result back to text. On failure it rolls back the
// current tree state (clearing diff and target) so a failed parse
// can't be mistaken for a usable one on a later call.
func (p *Parser) Parse() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	merged, _, err := p.mergeLocked()
	if err != nil {
		return "", err
	}
	return serialize.Tree(merged, p.cache), nil
}

// MergeTree runs the same merge Parse does but returns the result tree
// and the pre-merge target tree instead of serialized text, along with
// the string cache needed to resolve their signature ids. This is what
// a --diff-preview renderer needs: Parse alone throws away which result
// nodes are new or changed relative to target.
func (p *Parser) MergeTree() (result, target []*ast.Node, cache *strcache.Cache, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	merged, tgt, err := p.mergeLocked()
	if err != nil {
		return nil, nil, nil, err
	}
	return merged, tgt, p.cache, nil
}

// mergeLocked performs the dialect-dispatched merge. Every caller must
// already hold p.mu; this helper never locks it itself.
func (p *Parser) mergeLocked() ([]*ast.Node, []*ast.Node, error) {
	if p.diff == nil || p.target == nil {
		return nil, nil, patcherrors.New(patcherrors.Internal, "Parse called before both SetDiff and SetTarget")
	}

	var merged []*ast.Node
	var err error
	switch p.dialect {
	case ast.Scr:
		merged, err = merge.Scr(p.cache, p.target, p.diff, p.logger)
	case ast.Def:
		merged, err = merge.Def(p.cache, p.target, p.diff, p.logger)
	case ast.Loot:
		merged, err = merge.Loot(p.cache, p.target, p.diff, p.logger)
	case ast.Varlist:
		merged, err = merge.Varlist(p.cache, p.target, p.diff, p.logger)
	default:
		err = patcherrors.New(patcherrors.Internal, "unknown dialect on a parser that already deduced one")
	}
	if err != nil {
		p.diff = nil
		p.target = nil
		return nil, nil, err
	}
	return merged, p.target, nil
}

// Reset discards all parser state, including the string cache.
func (p *Parser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialect = ast.Invalid
	p.targetPath = ""
	p.diff = nil
	p.target = nil
	p.cache.Reset()
}
