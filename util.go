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

// Git-series | Miscellaneous utilities
package main

import (
	"lab.nexedi.com/kirr/go123/mem"
)

// String and Bytes are the zero-copy []byte<->string conversions used
// wherever a blob/message is read once and never mutated afterwards - e.g.
// a git subprocess's captured stdout on its way to being trimmed and
// returned, or a hex hash string on its way into hex.Decode. Kept as thin
// unqualified wrappers over go123/mem so the borrow is visible at every call
// site without spelling out mem.String/mem.Bytes each time.
func String(b []byte) string { return mem.String(b) }
func Bytes(s string) []byte  { return mem.Bytes(s) }
