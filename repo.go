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

// Git-series | Repository handle binding object-store gateway + worktree dir
package main

import (
	"os"

	git "github.com/git-series/git-series/internal/git"
)

// Repo is the handle every series operation (series.go) runs against: the
// object-store gateway (internal/git) plus the worktree directory gitexec.go
// needs for rebase/editor/diff subprocesses.
type Repo struct {
	git *git.Repository
	dir string // directory git/editor subprocesses run in (rebase, resolveGitish); openRepo sets the current directory
}

// openRepo opens the repository the way plain git picks one: $GIT_DIR, when
// set, names the repository directly and skips discovery; otherwise the
// enclosing repository is discovered upward from the current directory.
func openRepo() (*Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, erraddcontext(aserror(err), "getting current directory")
	}
	if gitdir := os.Getenv("GIT_DIR"); gitdir != "" {
		g, err := git.OpenRepository(gitdir)
		if err != nil {
			return nil, erraddcontext(aserror(err), "opening $GIT_DIR")
		}
		return &Repo{git: g, dir: cwd}, nil
	}
	g, err := git.OpenRepositoryDiscover(cwd)
	if err != nil {
		return nil, erraddcontext(aserror(err), "discovering git repository")
	}
	return &Repo{git: g, dir: cwd}, nil
}

// head resolves the current git HEAD to a commit hash.
// Returns NoHeadError if HEAD is unborn (no commits yet).
func (r *Repo) head() (Hash, error) {
	oid, err := r.git.References.LookupDirect("HEAD")
	if err != nil {
		return Hash{}, &NoHeadError{}
	}
	return HashFromOid(oid), nil
}

// resolve looks up name -> hash, reporting "" (not found) as ok=false rather
// than an error - the common case of "does this tier's ref exist".
func (r *Repo) resolve(name string) (h Hash, ok bool, err error) {
	oid, err := r.git.References.LookupDirect(name)
	if err != nil {
		if git.IsNotFound(err) {
			return Hash{}, false, nil
		}
		return Hash{}, false, err
	}
	return HashFromOid(oid), true, nil
}

// updateRef performs a compare-and-set ref update. expectedOld being the
// zero Hash means "ref must not currently exist".
func (r *Repo) updateRef(name string, newHash, expectedOld Hash, msg string) error {
	var current *git.Oid
	if !expectedOld.IsZero() {
		current = expectedOld.AsOid()
	}
	_, err := r.git.References.CreateMatching(name, newHash.AsOid(), current, msg)
	if err != nil {
		return &RefRacedError{Ref: name, Err: err}
	}
	return nil
}

// deleteRef removes name if its current target is expectedOld. Not finding
// the ref at all is treated as success (delete is idempotent).
func (r *Repo) deleteRef(name string, expectedOld Hash) error {
	err := r.git.References.RemoveMatching(name, expectedOld.AsOid())
	if err != nil {
		if git.IsNotFound(err) {
			return nil
		}
		return &RefRacedError{Ref: name, Err: err}
	}
	return nil
}

// setSymref points name (symbolic) at target, e.g. refs/SHEAD -> a tier ref.
func (r *Repo) setSymref(name, target, msg string) error {
	_, err := r.git.References.CreateSymbolic(name, target, true, msg)
	return err
}

// deleteSymref removes a symbolic ref. Missing is not an error.
func (r *Repo) deleteSymref(name string) error {
	ref, err := r.git.References.Lookup(name)
	if err != nil {
		if git.IsNotFound(err) {
			return nil
		}
		return err
	}
	return ref.Delete()
}

// readSymref returns the target name is pointing at, and whether name exists.
func (r *Repo) readSymref(name string) (target string, ok bool, err error) {
	ref, err := r.git.References.Lookup(name)
	if err != nil {
		if git.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return ref.SymbolicTarget(), true, nil
}

// listRefs enumerates ref names under glob.
func (r *Repo) listRefs(glob string) ([]string, error) {
	return r.git.References.List(glob)
}

// writeBlob stores data as a blob and returns its hash.
func (r *Repo) writeBlob(data []byte) (Hash, error) {
	odb, err := r.git.Odb()
	if err != nil {
		return Hash{}, &ObjectStoreError{Context: "opening odb", Err: err}
	}
	oid, err := odb.Write(data, git.ObjectBlob)
	if err != nil {
		return Hash{}, &ObjectStoreError{Context: "writing blob", Err: err}
	}
	return HashFromOid(oid), nil
}

// readBlob reads back a blob's content by hash.
func (r *Repo) readBlob(h Hash) ([]byte, error) {
	odb, err := r.git.Odb()
	if err != nil {
		return nil, &ObjectStoreError{Context: "opening odb", Err: err}
	}
	obj, err := odb.Read(h.AsOid())
	if err != nil {
		return nil, &ObjectStoreError{Context: "reading blob " + h.String(), Err: err}
	}
	return obj.Data(), nil
}

// tree loads the top-level seriesTree a commit carries.
func (r *Repo) tree(h Hash) (seriesTree, error) {
	commit, err := r.git.LookupCommit(h.AsOid())
	if err != nil {
		return seriesTree{}, err
	}
	t, err := commit.Tree()
	if err != nil {
		return seriesTree{}, err
	}
	return decodeSeriesTree(t)
}

func (r *Repo) commit(h Hash) (*git.Commit, error) {
	return r.git.LookupCommit(h.AsOid())
}
