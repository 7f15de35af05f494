// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file (in go.git repository).

package main

import (
    "flag"
    "fmt"
    "strconv"
)

// flag that is both bool and int - for e.g. handling -v -v -v ...
// inspired/copied by/from cmd.dist.count in go.git
type countFlag int

func (c *countFlag) String() string {
    return fmt.Sprint(int(*c))
}

func (c *countFlag) Set(s string) error {
    switch s {
    case "true":
        *c++
    case "false":
        *c = 0
    default:
        n, err := strconv.Atoi(s)
        if err != nil {
            return fmt.Errorf("invalid count %q", s)
        }
        *c = countFlag(n)
    }
    return nil
}

// flag.boolFlag
func (c *countFlag) IsBoolFlag() bool {
    return true
}

// flag.Value
var _ flag.Value = (*countFlag)(nil)

// verbose output
// 0 - silent
// 1 - info
// 2 - progress of long-running operations (git checkout output inherits our stdio)
// 3 - debug (git subprocess argv)
var verbose = 1
var quiet = 0

func infof(format string, a ...interface{}) {
    if verbose > 0 {
        fmt.Printf(format, a...)
        fmt.Println()
    }
}

func debugf(format string, a ...interface{}) {
    if verbose > 2 {
        fmt.Printf(format, a...)
        fmt.Println()
    }
}

// ttyRedirect picks how the `git checkout` subprocess run by checkoutCommit
// has its stdio connected - inherited from us at verbosity 2 and above, piped
// otherwise.
func ttyRedirect() StdioRedirect {
    if verbose > 1 {
        return DontRedirect
    }
    return PIPE
}
