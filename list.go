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

// Git-series | Listing & current series resolution, plus the handful of
// worktree-observing helpers (HEAD move, dirty check) the state machine needs
// but that belong to plain git porcelain, not the object-store gateway.
package main

import "sort"

// SeriesInfo is one row of `list()`.
type SeriesInfo struct {
	Name      string
	Current   bool
	Committed bool
	Staged    bool
	Working   bool
}

// list enumerates the union of names appearing under any of the three ref
// prefixes, marking the one (if any) named by SHEAD.
func (r *Repo) list() ([]SeriesInfo, error) {
	byName := map[string]*SeriesInfo{}
	get := func(name string) *SeriesInfo {
		si, ok := byName[name]
		if !ok {
			si = &SeriesInfo{Name: name}
			byName[name] = si
		}
		return si
	}

	for _, g := range []struct {
		glob string
		mark func(*SeriesInfo)
	}{
		{committedGlob, func(si *SeriesInfo) { si.Committed = true }},
		{stagedGlob, func(si *SeriesInfo) { si.Staged = true }},
		{workingGlob, func(si *SeriesInfo) { si.Working = true }},
	} {
		refs, err := r.listRefs(g.glob)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			name, _, ok := nameFromRef(ref)
			if !ok {
				continue
			}
			g.mark(get(name))
		}
	}

	cur, hasCur := r.currentName()

	var out []SeriesInfo
	for _, si := range byName {
		if hasCur && si.Name == cur {
			si.Current = true
		}
		out = append(out, *si)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// currentName reads SHEAD and returns the series name it points to, or
// ok=false if SHEAD is absent or dangling.
func (r *Repo) currentName() (name string, ok bool) {
	target, exists, err := r.readSymref(shead)
	if err != nil || !exists {
		return "", false
	}
	name, _, matched := nameFromRef(target)
	if !matched {
		return "", false
	}
	return name, true
}

// checkoutCommit moves git HEAD (and the worktree, if any) to h, the way
// `checkout <name>` needs to after picking the effective tier's tree. Shells
// out to plain git, same as the rest of the porcelain operations this tool is
// a thin layer over.
func (r *Repo) checkoutCommit(h Hash) error {
	gerr, _, _ := ggit2([]string{"checkout", h.String()}, RunWith{dir: r.dir, stdout: ttyRedirect(), stderr: ttyRedirect()})
	if gerr != nil {
		return &GitSubprocessFailedError{Argv: []string{"checkout", h.String()}, Err: gerr}
	}
	return nil
}

// worktreeDirty reports whether the worktree has uncommitted changes -
// `checkout` refuses to move HEAD from under them.
func (r *Repo) worktreeDirty() bool {
	gerr, stdout, _ := ggit2([]string{"status", "--porcelain"}, RunWith{dir: r.dir})
	if gerr != nil {
		// can't tell - be conservative, as a failing `git status` usually
		// means something worse than "dirty".
		return true
	}
	return stdout != ""
}
