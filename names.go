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

// Git-series | Series name validation
package main

import (
	"strings"
	"unicode"
)

// validateName rejects a series name that would not make a safe, unambiguous
// `refs/heads/git-series/<NAME>` component: non-empty, "/"-free, shell-safe,
// and acceptable to git's own check-refname-format.
func validateName(name string) error {
	if name == "" {
		return &InvalidNameError{name, "empty"}
	}
	if strings.HasPrefix(name, "-") {
		return &InvalidNameError{name, "starts with '-'"}
	}
	if strings.Contains(name, "/") {
		return &InvalidNameError{name, "contains '/'"}
	}
	if name == "." || name == ".." {
		return &InvalidNameError{name, "is '.' or '..'"}
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".lock") {
		return &InvalidNameError{name, "starts with '.' or ends with '.lock'"}
	}
	if strings.Contains(name, "..") {
		return &InvalidNameError{name, "contains '..'"}
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return &InvalidNameError{name, "contains whitespace or control characters"}
		}
		switch r {
		case ':', '?', '[', '\\', '^', '~', '*', '@':
			return &InvalidNameError{name, "contains a character git refs disallow"}
		}
	}
	if strings.Contains(name, "@{") {
		return &InvalidNameError{name, "contains '@{'"}
	}
	return nil
}
