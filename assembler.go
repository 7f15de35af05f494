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

// Git-series | Series commit assembler
package main

import (
	"sort"

	git "github.com/git-series/git-series/internal/git"
)

// assembleSeriesCommit builds a series-shaped commit from (prevSeries?,
// st, message):
//  1. collect every gitlink at st's top level into the parent list
//  2. prepend prevSeries, if given, as first parent
//  3. author/committer from git's usual identity resolution, write, return id
//
// prevHash, if non-zero, must name an existing commit - the previous
// committed series version this one supersedes. Working and staged commits
// are rewritten in place and pass the zero Hash: their parent list is the
// gitlink set alone.
func assembleSeriesCommit(repo *git.Repository, prevHash Hash, st seriesTree, message string) (Hash, error) {
	treeHash, err := encodeSeriesTree(repo, st)
	if err != nil {
		return Hash{}, err
	}
	tree, err := repo.LookupTree(treeHash.AsOid())
	if err != nil {
		return Hash{}, err
	}

	var parents []*git.Commit
	if !prevHash.IsZero() {
		prev, err := repo.LookupCommit(prevHash.AsOid())
		if err != nil {
			return Hash{}, err
		}
		parents = append(parents, prev)
	}

	seen := HashSet{}
	if !prevHash.IsZero() {
		seen.Add(prevHash)
	}
	var links []Hash
	for _, h := range st.gitlinks() {
		if seen.Contains(h) {
			continue
		}
		seen.Add(h)
		links = append(links, h)
	}
	sort.Sort(ByHash(links)) // the extra parents exist only for reachability; kept sorted so rebuilds are repeatable
	for _, h := range links {
		c, err := repo.LookupCommit(h.AsOid())
		if err != nil {
			return Hash{}, err
		}
		parents = append(parents, c)
	}

	author, committer, err := identity(repo)
	if err != nil {
		return Hash{}, err
	}

	oid, err := repo.CreateCommit(author, committer, message, tree, parents...)
	if err != nil {
		return Hash{}, err
	}
	return HashFromOid(oid), nil
}

// isRootSeriesCommit: a committed series commit is the root iff its first
// parent is itself one of the gitlinks in its own top-level tree - a non-root
// version's first parent is the previous series commit, which is never a
// gitlink in the tree.
func isRootSeriesCommit(c *git.Commit, st seriesTree) bool {
	if c.ParentCount() == 0 {
		return true
	}
	first := HashFromOid(c.ParentId(0))
	for _, h := range st.gitlinks() {
		if h == first {
			return true
		}
	}
	return false
}
