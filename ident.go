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

// Git-series | Author/committer identity resolution
package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	git "github.com/git-series/git-series/internal/git"
)

// identity resolves who a new series commit is by, the way git itself does:
// the GIT_AUTHOR_NAME/GIT_AUTHOR_EMAIL/GIT_AUTHOR_DATE triad (and the
// GIT_COMMITTER_* one) override everything when set; otherwise identity comes
// from user.name/user.email config via libgit2's default signature, stamped
// with the current time.
func identity(repo *git.Repository) (author, committer *git.Signature, err error) {
	author = envSignature("GIT_AUTHOR")
	committer = envSignature("GIT_COMMITTER")
	if author == nil || committer == nil {
		def, err := repo.DefaultSignature()
		if err != nil {
			return nil, nil, err
		}
		if author == nil {
			author = def
		}
		if committer == nil {
			committer = def
		}
	}
	return author, committer, nil
}

// envSignature builds a signature from <prefix>_NAME/_EMAIL/_DATE, or nil if
// name or email is unset. An unset or unparseable _DATE falls back to the
// current time, the same as git when only name and email are overridden.
func envSignature(prefix string) *git.Signature {
	name := os.Getenv(prefix + "_NAME")
	email := os.Getenv(prefix + "_EMAIL")
	if name == "" || email == "" {
		return nil
	}
	when := time.Now()
	if d := os.Getenv(prefix + "_DATE"); d != "" {
		if t, ok := parseGitDate(d); ok {
			when = t
		}
	}
	return &git.Signature{Name: name, Email: email, When: when}
}

// parseGitDate accepts the date formats git documents for GIT_AUTHOR_DATE:
// the internal "<unix> <±hhmm>" form (optionally with a leading '@'),
// RFC 2822, and ISO 8601.
func parseGitDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	raw := strings.TrimPrefix(s, "@")
	if f := strings.Fields(raw); len(f) == 2 {
		sec, err := strconv.ParseInt(f[0], 10, 64)
		zone, err2 := time.Parse("-0700", f[1])
		if err == nil && err2 == nil {
			return time.Unix(sec, 0).In(zone.Location()), true
		}
	}

	for _, layout := range []string{
		time.RFC1123Z,          // RFC 2822: "Thu, 07 Apr 2005 22:13:13 +0200"
		time.RFC3339,           // ISO 8601: "2005-04-07T22:13:13+02:00"
		"2006-01-02 15:04:05 -0700",
		"2006-01-02T15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
