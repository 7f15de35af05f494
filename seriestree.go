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

// Git-series | Series tree codec
package main

import (
	"fmt"

	git "github.com/git-series/git-series/internal/git"
)

// entry names a series tree may carry - the full set.
const (
	entrySeries = "series"
	entryBase   = "base"
	entryCover  = "cover"
)

// seriesTree is the decoded form of a series-shaped commit's tree: the
// {series, base?, cover?} entries every working/staged/committed commit
// carries.
type seriesTree struct {
	Series   Hash // required, mode 160000
	Base     Hash // optional, mode 160000; zero if absent
	Cover    Hash // optional, mode 100644 (blob id); zero if absent
	HasBase  bool
	HasCover bool
}

// decodeSeriesTree reads t into a seriesTree, rejecting anything that is not
// exactly one of {series, base, cover} with the prescribed modes, and
// requiring that series be present. Unknown entries are an error, not a
// silent drop - an entry we don't understand must never be silently lost on
// the next rewrite of the tree.
func decodeSeriesTree(t *git.Tree) (seriesTree, error) {
	var st seriesTree
	n := t.EntryCount()
	for i := uint64(0); i < n; i++ {
		e := t.EntryByIndex(i)
		switch e.Name {
		case entrySeries:
			if e.Filemode != git.FilemodeGitlink {
				return st, &MalformedSeriesTreeError{Reason: fmt.Sprintf("%s has mode %o, want gitlink", entrySeries, e.Filemode)}
			}
			st.Series = HashFromOid(e.Id)
		case entryBase:
			if e.Filemode != git.FilemodeGitlink {
				return st, &MalformedSeriesTreeError{Reason: fmt.Sprintf("%s has mode %o, want gitlink", entryBase, e.Filemode)}
			}
			st.Base = HashFromOid(e.Id)
			st.HasBase = true
		case entryCover:
			if e.Filemode != git.FilemodeBlob {
				return st, &MalformedSeriesTreeError{Reason: fmt.Sprintf("%s has mode %o, want blob", entryCover, e.Filemode)}
			}
			st.Cover = HashFromOid(e.Id)
			st.HasCover = true
		default:
			return st, &MalformedSeriesTreeError{Reason: fmt.Sprintf("unknown entry %q in series tree", e.Name)}
		}
	}
	if st.Series.IsZero() {
		return st, &MalformedSeriesTreeError{Reason: "missing " + entrySeries}
	}
	return st, nil
}

// encodeSeriesTree writes st as a tree object via repo's object-store
// gateway, in git's canonical lexicographic entry order (base < cover <
// series), and returns its hash.
func encodeSeriesTree(repo *git.Repository, st seriesTree) (Hash, error) {
	if st.Series.IsZero() {
		panic("encodeSeriesTree: series is required")
	}
	tb, err := repo.TreeBuilder()
	if err != nil {
		return Hash{}, err
	}
	if st.HasBase {
		if err := tb.Insert(entryBase, st.Base.AsOid(), git.FilemodeGitlink); err != nil {
			return Hash{}, err
		}
	}
	if st.HasCover {
		if err := tb.Insert(entryCover, st.Cover.AsOid(), git.FilemodeBlob); err != nil {
			return Hash{}, err
		}
	}
	if err := tb.Insert(entrySeries, st.Series.AsOid(), git.FilemodeGitlink); err != nil {
		return Hash{}, err
	}
	oid, err := tb.Write()
	if err != nil {
		return Hash{}, err
	}
	return HashFromOid(oid), nil
}

// gitlinks returns the distinct gitlink hashes (series, base) present in st,
// the set the assembler records as the commit's extra parents.
func (st seriesTree) gitlinks() []Hash {
	links := []Hash{st.Series}
	if st.HasBase && st.Base != st.Series {
		links = append(links, st.Base)
	}
	return links
}

// withChange returns a copy of st with the named change set from src (copy
// semantics used by both `add` and `unadd`). If src lacks the
// change, it is removed from the result - except `series`, which is mandatory
// on every series tree and is therefore never removed.
func (st seriesTree) withChange(change string, src seriesTree) (seriesTree, error) {
	out := st
	switch change {
	case entrySeries:
		out.Series = src.Series
	case entryBase:
		out.HasBase = src.HasBase
		out.Base = src.Base
	case entryCover:
		out.HasCover = src.HasCover
		out.Cover = src.Cover
	default:
		return st, &InvalidChangeError{Change: change}
	}
	return out, nil
}

func (st seriesTree) equal(other seriesTree) bool {
	if st.Series != other.Series {
		return false
	}
	if st.HasBase != other.HasBase || (st.HasBase && st.Base != other.Base) {
		return false
	}
	if st.HasCover != other.HasCover || (st.HasCover && st.Cover != other.Cover) {
		return false
	}
	return true
}
