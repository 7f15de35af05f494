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

// Package xerr provides a small panic/recover "exception" idiom for
// propagating errors with accumulated calling context (raise, raisef,
// errcatch, ...), in the spirit of lab.nexedi.com/kirr/go123/xerr.
//
// The point of raising instead of threading `if err != nil { return ... }`
// through every call site is that git-series' state machine operations are
// deep call trees (state machine -> assembler -> codec -> object-store
// gateway) where only the top-level operation and the CLI's main() care about
// turning a failure into a diagnostic and an exit code; everything in between
// just wants to bail out.
package xerr

import (
	"fmt"
	"runtime"
)

// Error is a raised error together with a stack of added context.
//
// Cause is the original error or value raised; Context holds messages added
// by AddContext/AddCallingContext on the way back up to the handler installed
// by Catch, outermost-last.
type Error struct {
	Cause   error
	Context []string
}

func (e *Error) Error() string {
	s := e.Cause.Error()
	for i := 0; i < len(e.Context); i++ {
		s = e.Context[i] + ": " + s
	}
	return s
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// AsError converts an arbitrary error into *Error (wrapping it if it is not
// already one).
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Cause: err}
}

// Raise panics with arg wrapped as *Error. arg may be an error, or anything
// with an Error() string method, or any other value (stringified via
// fmt.Sprint).
func Raise(arg interface{}) {
	switch v := arg.(type) {
	case *Error:
		panic(v)
	case error:
		panic(&Error{Cause: v})
	default:
		panic(&Error{Cause: fmt.Errorf("%v", v)})
	}
}

// Raisef is like Raise but builds the cause via fmt.Errorf(format, argv...).
func Raisef(format string, argv ...interface{}) {
	Raise(fmt.Errorf(format, argv...))
}

// RaiseIf calls Raise(err) if err != nil.
func RaiseIf(err error) {
	if err != nil {
		Raise(err)
	}
}

// AddContext prepends ctx to e's context stack and returns e, for use from a
// recovered handler right before re-panicking or returning the error onward.
func AddContext(e *Error, ctx string) *Error {
	e.Context = append(e.Context, ctx)
	return e
}

// AddCallingContext is AddContext with ctx built from the name of the
// function the caller is currently in (see FuncName): `here := FuncName()` is
// captured once at function entry and used in a deferred Catch.
func AddCallingContext(funcname string, e *Error) *Error {
	return AddContext(e, funcname)
}

// Catch recovers a panic raised via Raise/Raisef/RaiseIf and, if there was
// one, converts it to *Error and invokes onerr with it. Any other (unrelated)
// panic propagates unchanged. Install with `defer Catch(func(e *Error) {...})`
// at the dispatch boundary that owns turning failures into diagnostics.
func Catch(onerr func(e *Error)) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(*Error)
	if !ok {
		panic(r) // not one of ours - let it keep unwinding
	}
	onerr(e)
}

// FuncName returns the name of the function that is currently executing
// (i.e. the caller of FuncName), for use as the `here` argument to
// AddCallingContext.
func FuncName() string {
	return funcNameSkip(2)
}

// FuncNameSkip is FuncName for callers one or more thin wrappers removed from
// the function whose name is wanted - skip counts frames above FuncNameSkip
// itself (skip=1 is FuncNameSkip's own caller, same as FuncName's skip=0).
func FuncNameSkip(skip int) string {
	return funcNameSkip(skip + 1)
}

func funcNameSkip(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	return f.Name()
}
