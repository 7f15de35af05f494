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

// Git-series | Error kinds
package main

import "fmt"

// user errors - exit code 1

type UnknownSeriesError struct{ Name string }

func (e *UnknownSeriesError) Error() string { return fmt.Sprintf("no such series: %q", e.Name) }

type SeriesExistsError struct{ Name string }

func (e *SeriesExistsError) Error() string { return fmt.Sprintf("series %q already exists", e.Name) }

type NoCurrentSeriesError struct{}

func (e *NoCurrentSeriesError) Error() string { return "no current series (SHEAD not set)" }

type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid series name %q: %s", e.Name, e.Reason)
}

type InvalidChangeError struct{ Change string }

func (e *InvalidChangeError) Error() string {
	return fmt.Sprintf("invalid change %q (want one of series, base, cover)", e.Change)
}

type NoHeadError struct{}

func (e *NoHeadError) Error() string { return "HEAD does not resolve to a commit" }

type NoBaseError struct{ Name string }

func (e *NoBaseError) Error() string {
	return fmt.Sprintf("series %q has no base (set one with 'git series base <commit>')", e.Name)
}

type BadRevisionError struct {
	Rev string
	Err error
}

func (e *BadRevisionError) Error() string { return fmt.Sprintf("bad revision %q: %s", e.Rev, e.Err) }
func (e *BadRevisionError) Unwrap() error { return e.Err }

type DirtyWorktreeError struct{}

func (e *DirtyWorktreeError) Error() string { return "worktree has uncommitted changes" }

type NothingToAddError struct{}

func (e *NothingToAddError) Error() string { return "nothing to add: working matches staged" }

type NothingToCommitError struct{}

func (e *NothingToCommitError) Error() string {
	return "nothing to commit (tree unchanged from previous committed version)"
}

type EditorAbortedError struct{ Reason string }

func (e *EditorAbortedError) Error() string { return "aborted: " + e.Reason }

// infrastructure errors - exit code 2 (or propagate subprocess exit status)

type RefRacedError struct {
	Ref string
	Err error
}

func (e *RefRacedError) Error() string { return fmt.Sprintf("ref %s: update raced: %s", e.Ref, e.Err) }
func (e *RefRacedError) Unwrap() error { return e.Err }

type ObjectStoreError struct {
	Context string
	Err     error
}

func (e *ObjectStoreError) Error() string { return fmt.Sprintf("%s: %s", e.Context, e.Err) }
func (e *ObjectStoreError) Unwrap() error { return e.Err }

type GitSubprocessFailedError struct {
	Argv []string
	Err  error
}

func (e *GitSubprocessFailedError) Error() string {
	return fmt.Sprintf("git %v: %s", e.Argv, e.Err)
}
func (e *GitSubprocessFailedError) Unwrap() error { return e.Err }

type MalformedSeriesTreeError struct{ Reason string }

func (e *MalformedSeriesTreeError) Error() string {
	return fmt.Sprintf("malformed series tree: %s", e.Reason)
}

// exitCode classifies an error for the exit-code contract:
// 0 success, 1 user error, 2 invariant violation / bug; a git subprocess that
// exited with a non-zero status passes that status through.
func exitCode(err error) int {
	switch e := err.(type) {
	case *UnknownSeriesError, *SeriesExistsError, *NoCurrentSeriesError,
		*InvalidNameError, *InvalidChangeError, *NoHeadError, *NoBaseError,
		*BadRevisionError, *DirtyWorktreeError, *NothingToAddError,
		*NothingToCommitError, *EditorAbortedError:
		return 1
	case *GitSubprocessFailedError:
		if gerr, ok := e.Err.(*GitError); ok && gerr != nil && gerr.ExitError != nil {
			if code := gerr.ExitCode(); code > 0 {
				return code
			}
		}
		return 2
	default:
		return 2
	}
}
