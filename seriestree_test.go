// Copyright (C) 2025  Nexedi SA and Contributors.
//                     Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

package main

import (
	"testing"

	git "github.com/git-series/git-series/internal/git"
)

// TestSeriesTreeRoundtrip: every series-shaped tree has `series` present
// with mode 160000; `base`/`cover` are present only with their declared
// modes; no other entries.
func TestSeriesTreeRoundtrip(t *testing.T) {
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	c0 := xcommitFile(t, r, "b", "world", "c0")

	blob, err := r.writeBlob([]byte("cover letter\n"))
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		name string
		st   seriesTree
	}{
		{"series only", seriesTree{Series: c1}},
		{"series+base", seriesTree{Series: c1, HasBase: true, Base: c0}},
		{"series+cover", seriesTree{Series: c1, HasCover: true, Cover: blob}},
		{"series+base+cover", seriesTree{Series: c1, HasBase: true, Base: c0, HasCover: true, Cover: blob}},
	}

	for _, tt := range tests {
		h, err := encodeSeriesTree(r.git, tt.st)
		if err != nil {
			t.Errorf("%s: encode: %s", tt.name, err)
			continue
		}
		tree, err := r.git.LookupTree(h.AsOid())
		if err != nil {
			t.Errorf("%s: lookup: %s", tt.name, err)
			continue
		}
		got, err := decodeSeriesTree(tree)
		if err != nil {
			t.Errorf("%s: decode: %s", tt.name, err)
			continue
		}
		if !got.equal(tt.st) {
			t.Errorf("%s: roundtrip mismatch: got %+v, want %+v", tt.name, got, tt.st)
		}
	}
}

func TestDecodeSeriesTreeRejectsMissingSeries(t *testing.T) {
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c0 := xcommitFile(t, r, "a", "hello", "c0")

	tb, err := r.git.TreeBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := tb.Insert(entryBase, c0.AsOid(), git.FilemodeGitlink); err != nil {
		t.Fatal(err)
	}
	oid, err := tb.Write()
	if err != nil {
		t.Fatal(err)
	}
	tree, err := r.git.LookupTree(oid)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decodeSeriesTree(tree); err == nil {
		t.Errorf("decodeSeriesTree accepted a tree without series")
	}
}
