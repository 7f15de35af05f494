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

// Git-series | thin names for internal/xerr's exception idiom
//
// Kept as unqualified lowercase wrappers so the rest of the tree can just
// say raise/raisef/errcatch instead of spelling out xerr.Raise/xerr.Catch/...
// at every call site.
package main

import "github.com/git-series/git-series/internal/xerr"

type Error = xerr.Error

func raise(arg interface{})                     { xerr.Raise(arg) }
func raisef(format string, argv ...interface{}) { xerr.Raisef(format, argv...) }
func raiseif(err error) {
	if err != nil {
		xerr.Raise(err)
	}
}

// errcatch is bound directly to xerr.Catch, not wrapped in a call, so that
// `defer errcatch(onerr)` defers Catch itself: recover() only has effect when
// called directly by the deferred function, so an intermediate wrapper frame
// between defer and Catch's recover() would silently swallow nothing at all.
var errcatch = xerr.Catch

func aserror(err error) *Error                              { return xerr.AsError(err) }
func erraddcontext(e *Error, ctx string) *Error             { return xerr.AddContext(e, ctx) }
func erraddcallingcontext(funcname string, e *Error) *Error { return xerr.AddCallingContext(funcname, e) }
func myfuncname() string                                    { return xerr.FuncNameSkip(2) }
