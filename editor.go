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

// Git-series | Editor invocation (cover letters, commit messages)
//
// The editor subprocess is scoped to the operation invoking it, with
// guaranteed cleanup (temp file deletion) on every exit path including error
// - hence the defer immediately after the temp file is created, before
// anything that can raise().
package main

import (
	"io/ioutil"
	"os"
	"os/exec"
)

// editorCommand resolves $GIT_EDITOR, `git config core.editor`, $VISUAL,
// $EDITOR in that order, matching git's own precedence.
func editorCommand(dir string) string {
	if e := os.Getenv("GIT_EDITOR"); e != "" {
		return e
	}
	if gerr, stdout, _ := ggit2([]string{"config", "core.editor"}, RunWith{dir: dir}); gerr == nil && stdout != "" {
		return stdout
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// runEditor seeds a temp file with seed, opens it in the resolved editor, and
// returns the saved content. ok is false if the editor exited non-zero.
func runEditor(dir string, seed []byte, namehint string) (text []byte, ok bool) {
	f, err := ioutil.TempFile("", "git-series-"+namehint+"-")
	raiseif(err)
	path := f.Name()
	defer os.Remove(path)

	_, err = f.Write(seed)
	raiseif(err)
	raiseif(f.Close())

	cmd := exec.Command("sh", "-c", editorCommand(dir)+` "$1"`, "sh", path)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false
	}

	text, err = ioutil.ReadFile(path)
	raiseif(err)
	return text, true
}
