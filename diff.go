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

// Git-series | Diff rendering for status/log -p/commit -v
//
// The state machine (series.go) owns computing _whether_ two series trees
// differ; this file only owns turning that into text.
package main

import (
	"fmt"
	"strings"
)

const cutLine = "# ------------------------ >8 ------------------------"

// stripCut drops everything at or after cutLine, the way `commit -v`'s diff
// hint is never part of the actual message.
func stripCut(text []byte) string {
	s := string(text)
	if i := strings.Index(s, cutLine); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// entryDiff describes one {series,base,cover} entry's change between two
// series trees.
type entryDiff struct {
	Entry  string
	Change string // "added" | "removed" | "modified" | "" (unchanged)
	Old    string
	New    string
}

// diffSeriesTrees reports, per entry, whether it was added/removed/modified
// between prev and cur.
func diffSeriesTrees(prev, cur seriesTree) []entryDiff {
	var out []entryDiff
	diffField := func(name string, hasOld, hasNew bool, oldH, newH Hash) {
		switch {
		case !hasOld && hasNew:
			out = append(out, entryDiff{Entry: name, Change: "added", New: newH.String()})
		case hasOld && !hasNew:
			out = append(out, entryDiff{Entry: name, Change: "removed", Old: oldH.String()})
		case hasOld && hasNew && oldH != newH:
			out = append(out, entryDiff{Entry: name, Change: "modified", Old: oldH.String(), New: newH.String()})
		}
	}
	diffField(entrySeries, true, true, prev.Series, cur.Series)
	diffField(entryBase, prev.HasBase, cur.HasBase, prev.Base, cur.Base)
	diffField(entryCover, prev.HasCover, cur.HasCover, prev.Cover, cur.Cover)
	return out
}

func formatEntryDiffs(diffs []entryDiff) string {
	if len(diffs) == 0 {
		return "  (no changes)\n"
	}
	var b strings.Builder
	for _, d := range diffs {
		switch d.Change {
		case "added":
			fmt.Fprintf(&b, "  new %-7s %s\n", d.Entry, d.New)
		case "removed":
			fmt.Fprintf(&b, "  del %-7s %s\n", d.Entry, d.Old)
		case "modified":
			fmt.Fprintf(&b, "  mod %-7s %s..%s\n", d.Entry, d.Old[:12], d.New[:12])
		}
	}
	return b.String()
}

// renderTreeDiff is the text `log -p` and `commit -v` embed: the entry-level
// summary of the two trees, followed - when both sides have a base and their
// base..series ranges differ - by `git diff` between the two series tips. No
// per-patch range comparison is made; when either side lacks a base, or the
// `git diff` fails, only the entry-level summary is given.
func renderTreeDiff(r *Repo, prev, cur seriesTree) string {
	var b strings.Builder
	b.WriteString(formatEntryDiffs(diffSeriesTrees(prev, cur)))

	if prev.HasBase && cur.HasBase && !prev.Series.IsZero() && !cur.Series.IsZero() {
		oldRange := prev.Base.String() + ".." + prev.Series.String()
		newRange := cur.Base.String() + ".." + cur.Series.String()
		if oldRange != newRange {
			gerr, stdout, _ := ggit2(
				[]string{"diff", prev.Series.String(), cur.Series.String()},
				RunWith{dir: r.dir, raw: true},
			)
			if gerr == nil {
				b.WriteString(stdout)
			}
		}
	}
	return b.String()
}
