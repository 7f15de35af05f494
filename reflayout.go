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

// Git-series | Ref layout
//
// The committed head lives under refs/heads/ so ordinary git sees it as a
// branch git-series/<NAME> and transports it by default; staged and working
// stay under refs/git-series-internals/ where plain git leaves them alone.
package main

import "fmt"

const (
	shead = "refs/SHEAD"
)

// the three tiers a series can be in.
type tier int

const (
	tierCommitted tier = iota
	tierStaged
	tierWorking
)

func (t tier) String() string {
	switch t {
	case tierCommitted:
		return "committed"
	case tierStaged:
		return "staged"
	case tierWorking:
		return "working"
	}
	return "?"
}

func committedRef(name string) string { return fmt.Sprintf("refs/heads/git-series/%s", name) }
func stagedRef(name string) string {
	return fmt.Sprintf("refs/git-series-internals/staged/%s", name)
}
func workingRef(name string) string {
	return fmt.Sprintf("refs/git-series-internals/working/%s", name)
}

func tierRef(name string, t tier) string {
	switch t {
	case tierCommitted:
		return committedRef(name)
	case tierStaged:
		return stagedRef(name)
	case tierWorking:
		return workingRef(name)
	}
	panic("tierRef: invalid tier")
}

const (
	committedGlob = "refs/heads/git-series/*"
	stagedGlob    = "refs/git-series-internals/staged/*"
	workingGlob   = "refs/git-series-internals/working/*"
)

// nameFromRef strips a ref layout prefix back down to the bare series name,
// the inverse of committedRef/stagedRef/workingRef.
func nameFromRef(ref string) (name string, t tier, ok bool) {
	for t, prefix := range map[tier]string{
		tierCommitted: "refs/heads/git-series/",
		tierStaged:    "refs/git-series-internals/staged/",
		tierWorking:   "refs/git-series-internals/working/",
	} {
		if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
			return ref[len(prefix):], t, true
		}
	}
	return "", 0, false
}
