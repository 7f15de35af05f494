// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

// Git-series | Set "template" type
package main

// Set<Hash>
type HashSet map[Hash]struct{}

func (s HashSet) Add(v Hash) {
	s[v] = struct{}{}
}

func (s HashSet) Contains(v Hash) bool {
	_, ok := s[v]
	return ok
}

// all elements of set as slice
func (s HashSet) Elements() []Hash {
	ev := make([]Hash, len(s))
	i := 0
	for e := range s {
		ev[i] = e
		i++
	}
	return ev
}

