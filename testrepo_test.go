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
	"io/ioutil"
	"os"
	"testing"

	git "github.com/git-series/git-series/internal/git"
)

func xgetcwd(t *testing.T) string {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return cwd
}

func xchdir(t *testing.T, dir string) {
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

// newTestRepo creates a fresh non-bare repository in a temp dir, chdir's into
// it (restoring cwd via the returned cleanup), and returns an opened Repo
// handle.
func newTestRepo(t *testing.T) (r *Repo, cleanup func()) {
	t.Helper()
	workdir, err := ioutil.TempDir("", "t-git-series")
	if err != nil {
		t.Fatal(err)
	}
	mydir := xgetcwd(t)
	xchdir(t, workdir)

	xgit("init", "-q", ".")
	xgit("config", "user.name", "test")
	xgit("config", "user.email", "test@example.com")

	g, err := git.OpenRepository(workdir)
	if err != nil {
		t.Fatal(err)
	}

	return &Repo{git: g, dir: workdir}, func() {
		xchdir(t, mydir)
		os.RemoveAll(workdir)
	}
}

// xcatch converts a raise()d *Error occurring anywhere in t's goroutine into
// a t.Fatal, reporting a raise as a normal test failure instead of an
// unhandled panic. Install with `defer xcatch(t)()` at the top of a test.
//
// The returned closure calls recover() directly in its own body rather than
// delegating to errcatch/xerr.Catch - recover only has effect when called
// directly by the deferred function itself (spec of the built-in recover),
// and this closure, not errcatch, is what `defer xcatch(t)()` defers.
func xcatch(t *testing.T) func() {
	t.Helper()
	return func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		t.Fatalf("%v", e)
	}
}

// xcommitFile commits a single file with the given content on top of
// whatever is currently checked out, and returns the new commit hash.
func xcommitFile(t *testing.T, r *Repo, name, content, msg string) Hash {
	t.Helper()
	if err := ioutil.WriteFile(r.dir+"/"+name, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	xgit2([]string{"add", name}, RunWith{dir: r.dir})
	xgit2([]string{"commit", "-q", "-m", msg}, RunWith{dir: r.dir})
	h, err := r.head()
	if err != nil {
		t.Fatal(err)
	}
	return h
}
