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

package main

import "testing"

func TestValidateName(t *testing.T) {
	var tests = []struct {
		name string
		ok   bool
	}{
		{"feat", true},
		{"feature-123", true},
		{"", false},
		{"-x", false},
		{"a/b", false},
		{".", false},
		{"..", false},
		{".hidden", false},
		{"x.lock", false},
		{"a..b", false},
		{"has space", false},
		{"weird@{1}", false},
		{"a:b", false},
		{"a?b", false},
		{"a*b", false},
	}

	for _, tt := range tests {
		err := validateName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("validateName(%q): err=%v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}
