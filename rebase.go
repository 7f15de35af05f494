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

// Git-series | Rebase driver
package main

// seriesRebase implements `rebase [-i] [<onto>]`: drives git's own
// interactive rebase over base..HEAD, then - only after git reports success -
// updates working's series (and, if onto was given, base) entry. Failure
// leaves all refs unchanged; partial rebase is owned by git, not us.
func (r *Repo) seriesRebase(name string, interactive bool, onto string) {
	st := r.mustWorkingTree(name)
	if !st.HasBase {
		raise(&NoBaseError{name})
	}

	ontoHash := st.Base
	if onto != "" {
		h, err := resolveGitish(r.dir, onto)
		if err != nil {
			raise(&BadRevisionError{Rev: onto, Err: err})
		}
		ontoHash = h
	}

	head, err := r.head()
	raiseif(err)

	argv := []string{"rebase"}
	if interactive {
		argv = append(argv, "-i")
	}
	argv = append(argv, "--onto", ontoHash.String(), st.Base.String(), head.String())

	gerr, _, _ := ggit2(argv, RunWith{dir: r.dir, stdout: DontRedirect, stderr: DontRedirect})
	if gerr != nil {
		raise(&GitSubprocessFailedError{Argv: argv, Err: gerr})
	}

	newHead, err := r.head()
	raiseif(err)

	r.mutateWorking(name, func(st seriesTree) seriesTree {
		st.Series = newHead
		if onto != "" {
			st.HasBase = true
			st.Base = ontoHash
		}
		return st
	}, "git series rebase")
}
