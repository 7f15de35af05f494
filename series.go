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

// Git-series | Series state machine
//
// Every entry point here follows the raise/errcatch idiom: errors
// that should abort the whole operation are raised (panicked) from deep
// inside a helper and recovered once at the command dispatch boundary in
// main.go, rather than threaded up through every return value.
package main

import (
	"fmt"
	"strings"
)

// seriesStart implements `start <name>`.
func (r *Repo) seriesStart(name string) {
	raiseif(validateName(name))
	if r.seriesExists(name) {
		raise(&SeriesExistsError{name})
	}
	head, err := r.head()
	raiseif(err)

	st := seriesTree{Series: head}
	wc, err := assembleSeriesCommit(r.git, Hash{}, st, "start "+name)
	raiseif(err)

	raiseif(r.updateRef(workingRef(name), wc, Hash{}, "git series start "+name))
	raiseif(r.setSymref(shead, workingRef(name), "git series start "+name))
}

// seriesExists reports whether any of the three tier refs for name exist -
// a series exists iff at least one of them does.
func (r *Repo) seriesExists(name string) bool {
	for _, t := range []tier{tierWorking, tierStaged, tierCommitted} {
		if _, ok, err := r.resolve(tierRef(name, t)); err == nil && ok {
			return true
		}
	}
	return false
}

// effectiveTier picks the tier whose tree is "current" for checkout/status:
// working, else staged, else committed.
func (r *Repo) effectiveTier(name string) (tier, Hash, bool) {
	for _, t := range []tier{tierWorking, tierStaged, tierCommitted} {
		if h, ok, err := r.resolve(tierRef(name, t)); err == nil && ok {
			return t, h, true
		}
	}
	return 0, Hash{}, false
}

// seriesCheckout implements `checkout <name>`.
func (r *Repo) seriesCheckout(name string) {
	if !r.seriesExists(name) {
		raise(&UnknownSeriesError{name})
	}
	if r.worktreeDirty() {
		raise(&DirtyWorktreeError{})
	}
	_, h, ok := r.effectiveTier(name)
	if !ok {
		raise(&UnknownSeriesError{name})
	}
	st, err := r.tree(h)
	raiseif(err)

	raiseif(r.checkoutCommit(st.Series))
	raiseif(r.setSymref(shead, workingRef(name), "git series checkout "+name))
}

// seriesDetach implements `detach`.
func (r *Repo) seriesDetach() {
	if _, ok := r.currentName(); !ok {
		raise(&NoCurrentSeriesError{})
	}
	raiseif(r.deleteSymref(shead))
}

// seriesDelete implements `delete <name>` - removes whichever of the three
// refs exist; clearing SHEAD if it named this series. Does not require the
// series to be clean.
func (r *Repo) seriesDelete(name string) {
	if !r.seriesExists(name) {
		raise(&UnknownSeriesError{name})
	}
	if cur, ok := r.currentName(); ok && cur == name {
		raiseif(r.deleteSymref(shead))
	}
	for _, t := range []tier{tierWorking, tierStaged, tierCommitted} {
		ref := tierRef(name, t)
		if h, ok, err := r.resolve(ref); err == nil && ok {
			raiseif(r.deleteRef(ref, h))
		}
	}
}

// seriesBaseSentinel is printed by `base` (no args) when working has no base.
const seriesBaseSentinel = "(no base)"

// seriesBaseGet implements `base` with no arguments.
func (r *Repo) seriesBaseGet(name string) string {
	st := r.mustWorkingTree(name)
	if !st.HasBase {
		return seriesBaseSentinel
	}
	return st.Base.String()
}

// seriesBaseSet implements `base <commit>`.
func (r *Repo) seriesBaseSet(name, gitish string) {
	h, err := resolveGitish(r.dir, gitish)
	if err != nil {
		raise(&BadRevisionError{Rev: gitish, Err: err})
	}
	r.mutateWorking(name, func(st seriesTree) seriesTree {
		st.HasBase = true
		st.Base = h
		return st
	}, "git series base "+gitish)
}

// seriesBaseDelete implements `base -d`.
func (r *Repo) seriesBaseDelete(name string) {
	r.mutateWorking(name, func(st seriesTree) seriesTree {
		st.HasBase = false
		st.Base = Hash{}
		return st
	}, "git series base -d")
}

// seriesCoverDelete implements `cover -d`.
func (r *Repo) seriesCoverDelete(name string) {
	r.mutateWorking(name, func(st seriesTree) seriesTree {
		st.HasCover = false
		st.Cover = Hash{}
		return st
	}, "git series cover -d")
}

// seriesCoverSet implements `cover` (no args): edit, and on non-empty save
// write a new cover blob into working; on empty save, remove cover.
func (r *Repo) seriesCoverSet(name string) {
	st := r.mustWorkingTree(name)
	var seed []byte
	if st.HasCover {
		data, err := r.readBlob(st.Cover)
		raiseif(err)
		seed = data
	}
	text, ok := runEditor(r.dir, seed, "series-cover")
	if !ok {
		raise(&EditorAbortedError{Reason: "editor exited non-zero"})
	}
	if len(text) == 0 {
		r.seriesCoverDelete(name)
		return
	}
	h, err := r.writeBlob(text)
	raiseif(err)
	r.mutateWorking(name, func(st seriesTree) seriesTree {
		st.HasCover = true
		st.Cover = h
		return st
	}, "git series cover")
}

// refreshWorkingSeries keeps working.series equal to the current git HEAD
// for whichever series is current (named by SHEAD), refreshed lazily here on
// the next observation rather than via any HEAD-move hook. There is no second
// checkout on disk - `series` in the working tree always mirrors HEAD. Series
// that are not current are left alone - only the checked-out series tracks
// HEAD.
func (r *Repo) refreshWorkingSeries(name string, st seriesTree) seriesTree {
	cur, ok := r.currentName()
	if !ok || cur != name {
		return st
	}
	head, err := r.head()
	if err != nil {
		return st
	}
	st.Series = head
	return st
}

// mutateWorking rewrites name's working commit in place: f is applied to its
// current tree and the result reassembled with only the tree's gitlinks as
// parents - the working tier carries no history of its own, only its tree is
// ever observed. The ref update still CASes against the previous working
// commit. The tree handed to f has `series` already refreshed to HEAD if name
// is the current series.
//
// When no working ref exists yet - the state a fresh clone leaves a series
// in, since only the committed ref lives under refs/heads and transports by
// default - the starting tree is not a bare {series: HEAD}; it falls back
// through the same working->staged->committed resolution mustWorkingTree
// uses, so an existing base/cover survives a bare `base <commit>`/`base
// -d`/`cover -d`/rebase performed right after a clone or checkout. A bare
// {series: HEAD} is only correct for a series that is genuinely new - no
// committed or staged ref exists at all.
func (r *Repo) mutateWorking(name string, f func(seriesTree) seriesTree, msg string) {
	ref := workingRef(name)
	prev, ok, err := r.resolve(ref)
	raiseif(err)
	var st seriesTree
	switch {
	case ok:
		st, err = r.tree(prev)
		raiseif(err)
	default:
		if _, h, found := r.effectiveTier(name); found {
			st, err = r.tree(h)
			raiseif(err)
		} else {
			head, err := r.head()
			raiseif(err)
			st = seriesTree{Series: head}
		}
	}
	st = r.refreshWorkingSeries(name, st)
	st = f(st)
	nh, err := assembleSeriesCommit(r.git, Hash{}, st, msg)
	raiseif(err)
	raiseif(r.updateRef(ref, nh, prev, msg))
}

// mustWorkingTree reads name's current working tree, falling back to the
// effective tier's tree (staged, else committed) if no working ref exists yet
// (a series with only a committed/staged ref still has an implicit working
// state mirroring that tier, since
// `base`/`cover` only ever mutate working). `series` is refreshed to HEAD
// first if name is the current series.
func (r *Repo) mustWorkingTree(name string) seriesTree {
	if h, ok, err := r.resolve(workingRef(name)); err == nil && ok {
		st, err := r.tree(h)
		raiseif(err)
		return r.refreshWorkingSeries(name, st)
	}
	_, h, ok := r.effectiveTier(name)
	if !ok {
		raise(&UnknownSeriesError{name})
	}
	st, err := r.tree(h)
	raiseif(err)
	return r.refreshWorkingSeries(name, st)
}

// seriesAdd implements `add <change>...`.
func (r *Repo) seriesAdd(name string, changes []string) {
	if len(changes) == 0 {
		raise(&InvalidChangeError{Change: ""})
	}
	for _, c := range changes {
		if c != entrySeries && c != entryBase && c != entryCover {
			raise(&InvalidChangeError{Change: c})
		}
	}

	working := r.mustWorkingTree(name)
	stagedRefName := stagedRef(name)
	prevStaged, hasStaged, err := r.resolve(stagedRefName)
	raiseif(err)
	base := working
	if hasStaged {
		st, err := r.tree(prevStaged)
		raiseif(err)
		base = st
	}

	next := base
	changed := false
	for _, c := range changes {
		nt, err := next.withChange(c, working)
		raiseif(err)
		if !nt.equal(next) {
			changed = true
		}
		next = nt
	}
	// NothingToAdd only applies when staged already exists and the requested
	// changes don't move it further - creating a fresh staged ref is always a
	// real transition, even when its content happens to equal working's.
	if hasStaged && !changed {
		raise(&NothingToAddError{})
	}

	// staged, like working, is rewritten in place - no parent chain beyond
	// the gitlinks its tree already pins.
	nh, err := assembleSeriesCommit(r.git, Hash{}, next, "git series add "+joinChanges(changes))
	raiseif(err)
	raiseif(r.updateRef(stagedRefName, nh, prevStaged, "git series add"))
}

// seriesUnadd implements `unadd <change>...`: inverse of add, copying from
// committed back into staged.
func (r *Repo) seriesUnadd(name string, changes []string) {
	if len(changes) == 0 {
		raise(&InvalidChangeError{Change: ""})
	}
	for _, c := range changes {
		if c != entrySeries && c != entryBase && c != entryCover {
			raise(&InvalidChangeError{Change: c})
		}
	}
	stagedRefName := stagedRef(name)
	prevStaged, hasStaged, err := r.resolve(stagedRefName)
	if err != nil || !hasStaged {
		raise(&NothingToAddError{})
	}
	staged, err := r.tree(prevStaged)
	raiseif(err)

	var committed seriesTree
	if ch, ok, err := r.resolve(committedRef(name)); err == nil && ok {
		committed, err = r.tree(ch)
		raiseif(err)
	} else {
		// no committed head yet: unadd compares against an implicit
		// {series: working.series} tree.
		committed = seriesTree{Series: r.mustWorkingTree(name).Series}
	}

	next := staged
	for _, c := range changes {
		nt, err := next.withChange(c, committed)
		raiseif(err)
		next = nt
	}

	if next.equal(committed) {
		raiseif(r.deleteRef(stagedRefName, prevStaged))
		return
	}
	nh, err := assembleSeriesCommit(r.git, Hash{}, next, "git series unadd "+joinChanges(changes))
	raiseif(err)
	raiseif(r.updateRef(stagedRefName, nh, prevStaged, "git series unadd"))
}

func joinChanges(changes []string) string {
	s := ""
	for i, c := range changes {
		if i > 0 {
			s += " "
		}
		s += c
	}
	return s
}

// commitOptions carries `commit`'s CLI flags.
type commitOptions struct {
	All     bool
	Message string
	Verbose bool
}

// seriesCommit implements `commit [-a] [-m MSG] [-v]`.
func (r *Repo) seriesCommit(name string, opt commitOptions) {
	workingRefName := workingRef(name)
	workingHash, hasWorking, err := r.resolve(workingRefName)
	raiseif(err)
	if !hasWorking {
		raise(&NoHeadError{})
	}

	var source seriesTree
	if opt.All {
		source, err = r.tree(workingHash)
		raiseif(err)
		source = r.refreshWorkingSeries(name, source)
	} else {
		stagedHash, hasStaged, err := r.resolve(stagedRef(name))
		raiseif(err)
		if !hasStaged {
			raise(&NothingToCommitError{})
		}
		source, err = r.tree(stagedHash)
		raiseif(err)
	}

	prevCommitted, hasCommitted, err := r.resolve(committedRef(name))
	raiseif(err)
	var prevTree seriesTree
	if hasCommitted {
		prevTree, err = r.tree(prevCommitted)
		raiseif(err)
		if prevTree.equal(source) {
			raise(&NothingToCommitError{})
		}
	}

	message := opt.Message
	if message == "" {
		seed := []byte{}
		if opt.Verbose {
			d := renderTreeDiff(r, prevTree, source)
			seed = append(seed, []byte("\n"+cutLine+"\n"+d)...)
		}
		text, ok := runEditor(r.dir, seed, "series-commit")
		if !ok {
			raise(&EditorAbortedError{Reason: "editor exited non-zero"})
		}
		message = stripCut(text)
		if message == "" {
			raise(&EditorAbortedError{Reason: "empty commit message"})
		}
	}

	var prevHash Hash
	if hasCommitted {
		prevHash = prevCommitted
	}
	newCommitted, err := assembleSeriesCommit(r.git, prevHash, source, message)
	raiseif(err)

	// update order: committed -> delete staged -> working, so a failure
	// partway still leaves a reachable, consistent committed head.
	raiseif(r.updateRef(committedRef(name), newCommitted, prevCommitted, message))
	if stagedHash, hasStaged, err := r.resolve(stagedRef(name)); err == nil && hasStaged {
		raiseif(r.deleteRef(stagedRef(name), stagedHash))
	}
	raiseif(r.updateRef(workingRefName, newCommitted, workingHash, message))

	subject := message
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = subject[:i]
	}
	infof("[%s %s] %s", name, newCommitted.String()[:7], subject)
}

// seriesStatus implements `status`: committed<->staged ("changes staged for
// commit"), then staged<->working or, absent staged, committed<->working
// ("changes not staged").
func (r *Repo) seriesStatus(name string) string {
	var committed, staged, working seriesTree
	var hasCommitted, hasStaged, hasWorking bool
	var err error

	if h, ok, e := r.resolve(committedRef(name)); e == nil && ok {
		committed, err = r.tree(h)
		raiseif(err)
		hasCommitted = true
	}
	if h, ok, e := r.resolve(stagedRef(name)); e == nil && ok {
		staged, err = r.tree(h)
		raiseif(err)
		hasStaged = true
	}
	if h, ok, e := r.resolve(workingRef(name)); e == nil && ok {
		working, err = r.tree(h)
		raiseif(err)
		working = r.refreshWorkingSeries(name, working)
		hasWorking = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "series %s\n", name)

	fmt.Fprintf(&b, "changes staged for commit:\n")
	if hasStaged {
		b.WriteString(formatEntryDiffs(diffSeriesTrees(committed, staged)))
	} else {
		b.WriteString("  (nothing staged)\n")
	}

	fmt.Fprintf(&b, "changes not staged:\n")
	switch {
	case hasStaged && hasWorking:
		b.WriteString(formatEntryDiffs(diffSeriesTrees(staged, working)))
	case !hasStaged && hasWorking:
		b.WriteString(formatEntryDiffs(diffSeriesTrees(committed, working)))
	default:
		b.WriteString("  (nothing)\n")
	}

	switch {
	case !hasWorking && !hasStaged && !hasCommitted:
		b.WriteString("use 'git series start' to begin\n")
	case !hasStaged:
		b.WriteString("use 'git series add' to stage changes\n")
	default:
		b.WriteString("use 'git series commit' to commit staged changes\n")
	}
	return b.String()
}

// seriesLog implements `log [-p]`: walks the first-parent chain of the
// committed ref back to the root (the version whose first parent is itself a
// gitlink in its own tree).
func (r *Repo) seriesLog(name string, patch bool) string {
	h, ok, err := r.resolve(committedRef(name))
	raiseif(err)
	if !ok {
		raise(&UnknownSeriesError{name})
	}

	var b strings.Builder
	var prevTree seriesTree
	havePrev := false

	// walk oldest-first so a `-p` diff is against the prior version;
	// collect the chain first since we only know first parents forward.
	var chain []Hash
	cur := h
	for {
		chain = append(chain, cur)
		c, err := r.commit(cur)
		raiseif(err)
		st, err := r.tree(cur)
		raiseif(err)
		if isRootSeriesCommit(c, st) {
			break
		}
		cur = HashFromOid(c.ParentId(0))
	}
	for i := len(chain) - 1; i >= 0; i-- {
		ch := chain[i]
		c, err := r.commit(ch)
		raiseif(err)
		st, err := r.tree(ch)
		raiseif(err)

		fmt.Fprintf(&b, "commit %s\n", ch)
		fmt.Fprintf(&b, "    %s\n\n", strings.TrimSpace(c.Message()))
		if patch && havePrev {
			b.WriteString(renderTreeDiff(r, prevTree, st))
		}
		prevTree, havePrev = st, true
	}
	return b.String()
}
