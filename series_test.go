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
	"strings"
	"testing"
)

// TestSeriesStart: `start` creates exactly the working ref, with tree
// {series->HEAD} and no extra parents besides HEAD; SHEAD points at it.
func TestSeriesStart(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")

	if _, ok, _ := r.resolve(committedRef("feat")); ok {
		t.Errorf("start: committed ref should not exist yet")
	}
	if _, ok, _ := r.resolve(stagedRef("feat")); ok {
		t.Errorf("start: staged ref should not exist yet")
	}
	wh, ok, err := r.resolve(workingRef("feat"))
	if err != nil || !ok {
		t.Fatalf("start: working ref missing: %v", err)
	}
	st, err := r.tree(wh)
	if err != nil {
		t.Fatal(err)
	}
	if st.Series != c1 || st.HasBase || st.HasCover {
		t.Errorf("start: working tree = %+v, want {series: %s}", st, c1)
	}

	wc, err := r.commit(wh)
	if err != nil {
		t.Fatal(err)
	}
	if wc.ParentCount() != 1 || HashFromOid(wc.ParentId(0)) != c1 {
		t.Errorf("start: working commit parents should be exactly [HEAD]")
	}

	cur, ok := r.currentName()
	if !ok || cur != "feat" {
		t.Errorf("start: SHEAD = %q, %v; want feat, true", cur, ok)
	}
}

// TestSeriesStartDuplicate checks that starting an existing series fails.
func TestSeriesStartDuplicate(t *testing.T) {
	r, cleanup := newTestRepo(t)
	defer cleanup()
	xcommitFile(t, r, "a", "hello", "c1")

	func() {
		defer xcatch(t)()
		r.seriesStart("feat")
	}()

	err := xraised(func() { r.seriesStart("feat") })
	if err == nil {
		t.Fatalf("start duplicate: expected SeriesExists, got success")
	}
	if _, ok := err.Cause.(*SeriesExistsError); !ok {
		t.Errorf("start duplicate: got %v, want SeriesExistsError", err)
	}
}

// xraised runs f and returns the *Error it raised, or nil if f didn't panic
// via raise().
func xraised(f func()) (e *Error) {
	defer errcatch(func(err *Error) { e = err })
	f()
	return nil
}

// TestSeriesBase: `base <commit>` rewrites the working tree, adding the base
// commit as an extra parent.
func TestSeriesBase(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")

	// c0 is a commit unrelated to c1/HEAD's history, reachable only by hash.
	xgit2([]string{"checkout", "--orphan", "tmp"}, RunWith{dir: r.dir})
	c0 := xcommitFile(t, r, "b", "world", "c0")
	xgit2([]string{"checkout", c1.String()}, RunWith{dir: r.dir})

	if got := r.seriesBaseGet("feat"); got != seriesBaseSentinel {
		t.Errorf("base (no base set) = %q, want sentinel", got)
	}

	r.seriesBaseSet("feat", c0.String())

	wh, _, err := r.resolve(workingRef("feat"))
	if err != nil {
		t.Fatal(err)
	}
	st, err := r.tree(wh)
	if err != nil {
		t.Fatal(err)
	}
	if st.Series != c1 || !st.HasBase || st.Base != c0 {
		t.Errorf("base: working tree = %+v, want {series:%s, base:%s}", st, c1, c0)
	}
	if got := r.seriesBaseGet("feat"); got != c0.String() {
		t.Errorf("base (after set) = %q, want %s", got, c0)
	}

	wc, err := r.commit(wh)
	if err != nil {
		t.Fatal(err)
	}
	if wc.ParentCount() != 2 {
		t.Errorf("base: working commit should have 2 parents (c1, c0), got %d", wc.ParentCount())
	}
}

// TestMutateWorkingNoWorkingRefInheritsCommitted covers the state a fresh
// clone leaves a series in: only the committed ref transports by default, so
// no working ref exists until the first local mutation. A bare working-tier
// mutation (here `cover -d`) must inherit the existing base from the
// committed tree rather than starting from a bare {series: HEAD}, or it would
// silently drop it.
func TestMutateWorkingNoWorkingRefInheritsCommitted(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")

	xgit2([]string{"checkout", "--orphan", "tmp"}, RunWith{dir: r.dir})
	c0 := xcommitFile(t, r, "b", "world", "c0")
	xgit2([]string{"checkout", c1.String()}, RunWith{dir: r.dir})

	r.seriesBaseSet("feat", c0.String())
	r.seriesAdd("feat", []string{"series", "base"})
	r.seriesCommit("feat", commitOptions{Message: "v1"})

	// simulate the post-clone/post-checkout state: no working ref.
	wh, ok, err := r.resolve(workingRef("feat"))
	if err != nil || !ok {
		t.Fatal("expected a working ref to exist before simulating a clone")
	}
	if err := r.deleteRef(workingRef("feat"), wh); err != nil {
		t.Fatal(err)
	}

	r.seriesCoverDelete("feat")

	st := r.mustWorkingTree("feat")
	if !st.HasBase || st.Base != c0 {
		t.Errorf("cover -d with no working ref dropped base, got %+v, want base=%s", st, c0)
	}
	if st.Series != c1 {
		t.Errorf("cover -d with no working ref: series = %s, want %s", st.Series, c1)
	}
}

// TestSeriesAddUnadd: add then unadd of the same change set returns staged
// to its previous state, or deletes it.
func TestSeriesAddUnadd(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")
	xgit2([]string{"checkout", "--orphan", "tmp"}, RunWith{dir: r.dir})
	c0 := xcommitFile(t, r, "b", "world", "c0")
	xgit2([]string{"checkout", c1.String()}, RunWith{dir: r.dir})
	r.seriesBaseSet("feat", c0.String())

	r.seriesAdd("feat", []string{"base"})
	sh, ok, err := r.resolve(stagedRef("feat"))
	if err != nil || !ok {
		t.Fatalf("add base: staged ref missing: %v", err)
	}
	staged, err := r.tree(sh)
	if err != nil {
		t.Fatal(err)
	}
	if staged.Series != c1 || !staged.HasBase || staged.Base != c0 {
		t.Errorf("add base: staged tree = %+v, want {series:%s, base:%s}", staged, c1, c0)
	}

	// add series again: already matches, should be a no-op error since
	// nothing changed and staged already exists.
	if e := xraised(func() { r.seriesAdd("feat", []string{"series"}) }); e == nil {
		t.Errorf("add series (already matching): expected NothingToAdd, got success")
	} else if _, ok := e.Cause.(*NothingToAddError); !ok {
		t.Errorf("add series (already matching): got %v, want NothingToAddError", e)
	}

	r.seriesUnadd("feat", []string{"base"})
	// either is fine: staged deleted, or staged left with just {series: c1}.
	if sh2, ok, err := r.resolve(stagedRef("feat")); err == nil && ok {
		st2, err := r.tree(sh2)
		if err != nil {
			t.Fatal(err)
		}
		if st2.HasBase {
			t.Errorf("unadd base: staged still has base: %+v", st2)
		}
	}
}

// TestSeriesCommitRoot: `commit -a` from a series with only a working tree
// creates the root committed version, and isRootSeriesCommit detects it.
func TestSeriesCommitRoot(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")
	xgit2([]string{"checkout", "--orphan", "tmp"}, RunWith{dir: r.dir})
	c0 := xcommitFile(t, r, "b", "world", "c0")
	xgit2([]string{"checkout", c1.String()}, RunWith{dir: r.dir})
	r.seriesBaseSet("feat", c0.String())

	r.seriesCommit("feat", commitOptions{All: true, Message: "v1"})

	ch, ok, err := r.resolve(committedRef("feat"))
	if err != nil || !ok {
		t.Fatalf("commit -a: committed ref missing: %v", err)
	}
	if _, ok, _ := r.resolve(stagedRef("feat")); ok {
		t.Errorf("commit: staged ref should be deleted/absent after commit")
	}
	wh, _, err := r.resolve(workingRef("feat"))
	if err != nil {
		t.Fatal(err)
	}
	if wh != ch {
		t.Errorf("commit: working ref should now equal committed ref")
	}

	c, err := r.commit(ch)
	if err != nil {
		t.Fatal(err)
	}
	st, err := r.tree(ch)
	if err != nil {
		t.Fatal(err)
	}
	if !isRootSeriesCommit(c, st) {
		t.Errorf("commit -a: v1 should be detected as root (first parent is a gitlink in its own tree)")
	}

	// an immediate second commit -a with no changes must be rejected.
	if e := xraised(func() { r.seriesCommit("feat", commitOptions{All: true, Message: "v1-again"}) }); e == nil {
		t.Errorf("commit with unchanged tree: expected NothingToCommit, got success")
	} else if _, ok := e.Cause.(*NothingToCommitError); !ok {
		t.Errorf("commit with unchanged tree: got %v, want NothingToCommitError", e)
	}
}

// TestSeriesCommitV2AndLog: a second version advances first parent to v1 and
// picks up the new HEAD as an extra parent; `log` walks v2 -> v1 and stops
// (v1 is root).
func TestSeriesCommitV2AndLog(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	c1 := xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")
	xgit2([]string{"checkout", "--orphan", "tmp"}, RunWith{dir: r.dir})
	c0 := xcommitFile(t, r, "b", "world", "c0")
	xgit2([]string{"checkout", c1.String()}, RunWith{dir: r.dir})
	r.seriesBaseSet("feat", c0.String())
	r.seriesCommit("feat", commitOptions{All: true, Message: "v1"})
	v1h, _, err := r.resolve(committedRef("feat"))
	if err != nil {
		t.Fatal(err)
	}

	c2 := xcommitFile(t, r, "c", "again", "c2")
	// working.series is refreshed to the new HEAD lazily, on the next
	// series operation that observes it - `commit -a` here.
	r.seriesCommit("feat", commitOptions{All: true, Message: "v2"})
	v2h, ok, err := r.resolve(committedRef("feat"))
	if err != nil || !ok {
		t.Fatalf("commit v2: committed ref missing: %v", err)
	}

	v2c, err := r.commit(v2h)
	if err != nil {
		t.Fatal(err)
	}
	if v2c.ParentCount() == 0 || HashFromOid(v2c.ParentId(0)) != v1h {
		t.Errorf("commit v2: first parent should be v1")
	}
	v2t, err := r.tree(v2h)
	if err != nil {
		t.Fatal(err)
	}
	if v2t.Series != c2 || v2t.Base != c0 {
		t.Errorf("commit v2: tree = %+v, want {series:%s, base:%s}", v2t, c2, c0)
	}

	out := r.seriesLog("feat", false)
	iv1 := strings.Index(out, v1h.String())
	iv2 := strings.Index(out, v2h.String())
	if iv1 < 0 || iv2 < 0 || iv2 < iv1 {
		t.Errorf("log: expected both versions, oldest (v1) rendered before newest (v2), got:\n%s", out)
	}
}

// TestSeriesDelete: delete clears all three refs and SHEAD, without
// requiring the series to be clean.
func TestSeriesDelete(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")
	r.seriesAdd("feat", []string{"series"})

	r.seriesDelete("feat")

	for _, ref := range []string{committedRef("feat"), stagedRef("feat"), workingRef("feat")} {
		if _, ok, _ := r.resolve(ref); ok {
			t.Errorf("delete: ref %s still exists", ref)
		}
	}
	if _, ok := r.currentName(); ok {
		t.Errorf("delete: SHEAD should be cleared")
	}
}

// TestSeriesStatus: status reports a diff iff the corresponding tier-pair
// trees differ.
func TestSeriesStatus(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")

	out := r.seriesStatus("feat")
	if !strings.Contains(out, "nothing staged") {
		t.Errorf("status (fresh start): expected nothing staged, got:\n%s", out)
	}

	r.seriesAdd("feat", []string{"series"})
	out = r.seriesStatus("feat")
	if strings.Contains(out, "nothing staged") {
		t.Errorf("status (after add): expected staged changes reported, got:\n%s", out)
	}

	r.seriesCommit("feat", commitOptions{Message: "v1"})
	out = r.seriesStatus("feat")
	if !strings.Contains(out, "nothing staged") || !strings.Contains(out, "(no changes)") {
		t.Errorf("status (after commit): expected clean status, got:\n%s", out)
	}
}

// TestSeriesList: list enumerates every series and marks the current one.
func TestSeriesList(t *testing.T) {
	defer xcatch(t)()
	r, cleanup := newTestRepo(t)
	defer cleanup()

	xcommitFile(t, r, "a", "hello", "c1")
	r.seriesStart("feat")
	r.seriesStart("other")
	r.seriesDetach()
	r.seriesCheckout("feat")

	infos, err := r.list()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("list: got %d entries, want 2", len(infos))
	}
	var gotCurrent string
	for _, si := range infos {
		if si.Current {
			gotCurrent = si.Name
		}
	}
	if gotCurrent != "feat" {
		t.Errorf("list: current = %q, want feat", gotCurrent)
	}
}
