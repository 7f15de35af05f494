// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

// Package git wraps package git2go with providing unconditional safety.
//
// For example git2go.Object.Data() returns []byte that aliases unsafe memory
// that can go away from under []byte if original Object is garbage collected.
// The following code snippet is thus _not_ correct:
//
//	obj = odb.Read(sha1)
//	data = obj.Data()
//	... use data
//
// because obj can be garbage-collected right after `data = obj.Data()` but
// before `use data` leading to either crashes or memory corruption. A
// runtime.KeepAlive(obj) needs to be added to the end of the snippet - after
// `use data` - to make that code correct.
//
// Given that obj.Data() is not "speaking" by itself as unsafe, and that there
// are many similar methods, it is hard to see which places in the code needs
// special attention.
//
// For this reason git-series took the decision to localize git2go-related
// code in one small place here, and to expose only safe things to the rest of
// the program. That is: we make data copies when reading object data and
// similar things, to provide unconditional safety to the caller via that copy
// cost.
//
// This package is also the object-store gateway of the series object model:
// resolving refs, creating/updating/deleting them with compare-and-set
// semantics, and reading/writing the blobs/trees/commits a series is built
// from.
package git

import (
	"fmt"
	"runtime"

	git2go "github.com/libgit2/git2go/v31"
)

// constants are safe to propagate as is.
const (
	ObjectAny     = git2go.ObjectAny
	ObjectInvalid = git2go.ObjectInvalid
	ObjectCommit  = git2go.ObjectCommit
	ObjectTree    = git2go.ObjectTree
	ObjectBlob    = git2go.ObjectBlob
	ObjectTag     = git2go.ObjectTag

	// tree-entry filemodes used by a series tree
	FilemodeGitlink = git2go.FilemodeCommit // 160000 - gitlink / submodule-style commit reference
	FilemodeBlob    = git2go.FilemodeBlob   // 100644
	FilemodeTree    = git2go.FilemodeTree   // 040000
)

// types that are safe to propagate as is.
type (
	ObjectType = git2go.ObjectType // int
	Filemode   = git2go.Filemode   // int
	Oid        = git2go.Oid        // [20]byte             ; cloned when retrieved
	Signature  = git2go.Signature  // struct with strings  ; strings are cloned when retrieved
	TreeEntry  = git2go.TreeEntry  // struct with sting, Oid, ...  ; strings and oids are cloned when retrieved
	RefType    = git2go.ReferenceType
)

// types that we wrap to provide safety.

// Repository provides safe wrapper over git2go.Repository .
type Repository struct {
	repo       *git2go.Repository
	References *ReferenceCollection
}

// ReferenceCollection provides safe wrapper over git2go.ReferenceCollection .
type ReferenceCollection struct {
	r *Repository
}

// Reference provides safe wrapper over git2go.Reference .
type Reference struct {
	ref *git2go.Reference
}

// Commit provides safe wrapper over git2go.Commit .
type Commit struct {
	commit *git2go.Commit
}

// Tree provides safe wrapper over git2go.Tree .
type Tree struct {
	tree *git2go.Tree
}

// TreeBuilder provides safe wrapper over git2go.TreeBuilder .
type TreeBuilder struct {
	tb *git2go.TreeBuilder
}

// Odb provides safe wrapper over git2go.Odb .
type Odb struct {
	odb *git2go.Odb
}

// OdbObject provides safe wrapper over git2go.OdbObject .
type OdbObject struct {
	obj *git2go.OdbObject
}

// function and methods to navigate object hierarchy from Repository to e.g. OdbObject or Commit.

// OpenRepository opens the repository at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, err
	}
	r := &Repository{repo: repo}
	r.References = &ReferenceCollection{r}
	return r, nil
}

// OpenRepositoryDiscover discovers and opens the repository enclosing
// startPath, the way plain `git` discovers $GIT_DIR when run from anywhere
// inside a working tree.
func OpenRepositoryDiscover(startPath string) (*Repository, error) {
	path, err := git2go.Discover(startPath, false, nil)
	if err != nil {
		return nil, err
	}
	return OpenRepository(path)
}

func (rdb *ReferenceCollection) Create(name string, id *Oid, force bool, msg string) (*Reference, error) {
	ref, err := rdb.r.repo.References.Create(name, id, force, msg)
	if err != nil {
		return nil, err
	}
	return &Reference{ref}, nil
}

// CreateMatching creates or updates name -> id, failing unless the ref's
// current target equals current (nil current means "ref must not exist").
// This is the compare-and-set primitive every series ref transition commits
// through.
//
// The atomicity comes from libgit2 itself: Create with force=false refuses an
// existing ref, and SetTarget refuses (EMODIFIED) if name moved after the
// Lookup that produced the Reference it is called on.
func (rdb *ReferenceCollection) CreateMatching(name string, id *Oid, current *Oid, msg string) (*Reference, error) {
	if current == nil {
		return rdb.Create(name, id, false, msg)
	}
	ref, err := rdb.Lookup(name)
	if err != nil {
		return nil, err
	}
	if got := ref.Target(); got == nil || *got != *current {
		return nil, &ErrModified{Name: name, Expected: current, Got: got}
	}
	newref, err := ref.ref.SetTarget(id, msg)
	if err != nil {
		return nil, err
	}
	return &Reference{newref}, nil
}

// CreateSymbolic creates (or, with force, overwrites) a symbolic ref name -> target.
func (rdb *ReferenceCollection) CreateSymbolic(name, target string, force bool, msg string) (*Reference, error) {
	ref, err := rdb.r.repo.References.CreateSymbolic(name, target, force, msg)
	if err != nil {
		return nil, err
	}
	return &Reference{ref}, nil
}

// Lookup resolves name - one level only if name is itself symbolic - and
// returns the live Reference object.
func (rdb *ReferenceCollection) Lookup(name string) (*Reference, error) {
	ref, err := rdb.r.repo.References.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Reference{ref}, nil
}

// LookupDirect resolves a possibly-symbolic ref all the way down to the
// commit/tree/blob it ultimately names.
func (rdb *ReferenceCollection) LookupDirect(name string) (*Oid, error) {
	ref, err := rdb.Lookup(name)
	if err != nil {
		return nil, err
	}
	resolved, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	return resolved.Target(), nil
}

// RemoveMatching deletes name, provided its current target equals current.
//
// NOTE libgit2 exposes no atomic compare-and-delete primitive, so this is a
// lookup+compare immediately followed by delete - a small race window remains
// against another writer deleting/recreating name between the two calls. Ref
// updates (CreateMatching) are the only transition that must be truly atomic;
// deletes are best-effort, same as `git update-ref -d` which has the
// identical race.
func (rdb *ReferenceCollection) RemoveMatching(name string, current *Oid) error {
	ref, err := rdb.Lookup(name)
	if err != nil {
		return err
	}
	if got := ref.Target(); got == nil || *got != *current {
		return &ErrModified{Name: name, Expected: current, Got: got}
	}
	return ref.Delete()
}

// IsNotFound reports whether err is the "no such ref/object" error git2go
// returns from Lookup/LookupDirect/etc.
func IsNotFound(err error) bool {
	return git2go.IsErrorCode(err, git2go.ErrorCodeNotFound)
}

// ErrModified is returned by a compare-and-set ref operation whose expected
// old value did not match what is actually stored - the update raced with
// another writer.
type ErrModified struct {
	Name     string
	Expected *Oid
	Got      *Oid
}

func (e *ErrModified) Error() string {
	return fmt.Sprintf("ref %s: raced (expected %v, got %v)", e.Name, e.Expected, e.Got)
}

// List enumerates every ref name matching glob (e.g. "refs/heads/git-series/*").
func (rdb *ReferenceCollection) List(glob string) ([]string, error) {
	iter, err := rdb.r.repo.NewReferenceIteratorGlob(glob)
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		ref, err := iter.Next()
		if err != nil {
			break // iterator exhausted
		}
		names = append(names, stringsClone(ref.Name()))
	}
	runtime.KeepAlive(rdb.r)
	return names, nil
}

func (r *Repository) LookupCommit(id *Oid) (*Commit, error) {
	commit, err := r.repo.LookupCommit(id)
	if err != nil {
		return nil, err
	}
	return &Commit{commit}, nil
}

func (r *Repository) LookupTree(id *Oid) (*Tree, error) {
	tree, err := r.repo.LookupTree(id)
	if err != nil {
		return nil, err
	}
	return &Tree{tree}, nil
}

func (c *Commit) Tree() (*Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, err
	}
	return &Tree{tree}, nil
}

func (r *Repository) Odb() (*Odb, error) {
	odb, err := r.repo.Odb()
	if err != nil {
		return nil, err
	}
	return &Odb{odb}, nil
}

func (o *Odb) Read(oid *Oid) (*OdbObject, error) {
	obj, err := o.odb.Read(oid)
	if err != nil {
		return nil, err
	}
	return &OdbObject{obj}, nil
}

// TreeBuilder returns a fresh, empty tree builder, used to assemble a series
// tree from its {series, base?, cover?} entries.
func (r *Repository) TreeBuilder() (*TreeBuilder, error) {
	tb, err := r.repo.TreeBuilder()
	if err != nil {
		return nil, err
	}
	return &TreeBuilder{tb}, nil
}

func (tb *TreeBuilder) Insert(filename string, id *Oid, filemode Filemode) error {
	return tb.tb.Insert(filename, id, filemode)
}

func (tb *TreeBuilder) Write() (*Oid, error) {
	oid, err := tb.tb.Write()
	return oidClone(oid), err
}

// CreateCommit writes a commit object with the given tree and parents and
// returns its id. It never updates a ref itself - refs are the only mutable
// handles, and updating them is left to the explicit CAS calls above.
func (r *Repository) CreateCommit(author, committer *Signature, message string, tree *Tree, parents ...*Commit) (*Oid, error) {
	pcommits := make([]*git2go.Commit, len(parents))
	for i, p := range parents {
		pcommits[i] = p.commit
	}
	oid, err := r.repo.CreateCommit("", author, committer, message, tree.tree, pcommits...)
	return oidClone(oid), err
}

// DefaultSignature returns libgit2's default identity: user.name/user.email
// from config, stamped with the current time. GIT_AUTHOR_*/GIT_COMMITTER_* are
// not consulted here.
func (r *Repository) DefaultSignature() (*Signature, error) {
	s, err := r.repo.DefaultSignature()
	s = sigClone(s)
	runtime.KeepAlive(r)
	return s, err
}

// wrappers over safe methods

func (c *Commit) ParentCount() uint   { return c.commit.ParentCount() }
func (o *OdbObject) Type() ObjectType { return o.obj.Type() }
func (t *Tree) EntryCount() uint64    { return t.tree.EntryCount() }

// wrappers over unsafe, or potentially unsafe methods

func (r *Repository) Path() string {
	path := stringsClone(r.repo.Path())
	runtime.KeepAlive(r)
	return path
}

func (c *Commit) Id() *Oid {
	id := oidClone(c.commit.Id())
	runtime.KeepAlive(c)
	return id
}

func (c *Commit) Message() string {
	msg := stringsClone(c.commit.Message())
	runtime.KeepAlive(c)
	return msg
}

func (c *Commit) TreeId() *Oid {
	id := oidClone(c.commit.TreeId())
	runtime.KeepAlive(c)
	return id
}

func (c *Commit) ParentId(n uint) *Oid {
	pid := oidClone(c.commit.ParentId(n))
	runtime.KeepAlive(c)
	return pid
}

func (c *Commit) Author() *Signature {
	s := sigClone(c.commit.Author())
	runtime.KeepAlive(c)
	return s
}

func (c *Commit) Committer() *Signature {
	s := sigClone(c.commit.Committer())
	runtime.KeepAlive(c)
	return s
}

func (t *Tree) EntryByName(filename string) *TreeEntry {
	e := t.tree.EntryByName(filename)
	if e != nil {
		e = &TreeEntry{
			Name:     stringsClone(e.Name),
			Id:       oidClone(e.Id),
			Type:     e.Type,
			Filemode: e.Filemode,
		}
	}
	runtime.KeepAlive(t)
	return e
}

func (t *Tree) EntryByIndex(idx uint64) *TreeEntry {
	e := t.tree.EntryByIndex(idx)
	if e != nil {
		e = &TreeEntry{
			Name:     stringsClone(e.Name),
			Id:       oidClone(e.Id),
			Type:     e.Type,
			Filemode: e.Filemode,
		}
	}
	runtime.KeepAlive(t)
	return e
}

func (o *Odb) Write(data []byte, otype ObjectType) (*Oid, error) {
	oid, err := o.odb.Write(data, otype)
	oid = oidClone(oid)
	runtime.KeepAlive(o)
	return oid, err
}

func (o *OdbObject) Id() *Oid {
	id := oidClone(o.obj.Id())
	runtime.KeepAlive(o)
	return id
}

func (o *OdbObject) Data() []byte {
	data := bytesClone(o.obj.Data())
	runtime.KeepAlive(o)
	return data
}

func (ref *Reference) Name() string {
	name := stringsClone(ref.ref.Name())
	runtime.KeepAlive(ref)
	return name
}

func (ref *Reference) Type() RefType {
	t := ref.ref.Type()
	runtime.KeepAlive(ref)
	return t
}

func (ref *Reference) Target() *Oid {
	id := oidClone(ref.ref.Target())
	runtime.KeepAlive(ref)
	return id
}

func (ref *Reference) SymbolicTarget() string {
	target := stringsClone(ref.ref.SymbolicTarget())
	runtime.KeepAlive(ref)
	return target
}

func (ref *Reference) Resolve() (*Reference, error) {
	r, err := ref.ref.Resolve()
	if err != nil {
		return nil, err
	}
	return &Reference{r}, nil
}

func (ref *Reference) Delete() error {
	err := ref.ref.Delete()
	runtime.KeepAlive(ref)
	return err
}

// misc

func oidClone(oid *Oid) *Oid {
	var oid2 Oid
	if oid == nil {
		return nil
	}
	copy(oid2[:], oid[:])
	return &oid2
}

func sigClone(s *Signature) *Signature {
	if s == nil {
		return nil
	}
	return &Signature{
		Name:  stringsClone(s.Name),
		Email: stringsClone(s.Email),
		When:  s.When,
	}
}
