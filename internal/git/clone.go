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

package git

// stringsClone and bytesClone copy out of memory that may be owned and freed
// by libgit2, so that what we hand back to callers cannot be invalidated by a
// later runtime.GC() collecting the git2go object the memory aliased.
//
// go.mod floors at go1.17, which predates strings.Clone (go1.18) - these do
// the same thing by hand.
func stringsClone(s string) string {
	b := make([]byte, len(s))
	copy(b, s)
	return string(b)
}

func bytesClone(b []byte) []byte {
	if b == nil {
		return nil
	}
	b2 := make([]byte, len(b))
	copy(b2, b)
	return b2
}
