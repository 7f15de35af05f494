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

// Git-series | CLI entry point
//
// Global flags are parsed first, then the subcommand's own flag.FlagSet, then
// a single errcatch boundary turns a raised error into a diagnostic and the
// exit code (0 success, 1 user error, 2 invariant violation, or a failed git
// subprocess's own exit status).
package main

import (
	"flag"
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: git series <command> [options]

Commands:
    start <name>               start a new series off the current HEAD
    checkout <name>            switch SHEAD and HEAD to an existing series
    detach                     stop tracking a current series (refs kept)
    delete <name>              remove all refs of a series
    base [<commit>|-d]         show/set/delete the working base
    cover [-d]                 edit/delete the working cover letter
    add <change>...            stage series|base|cover from working
    unadd <change>...          unstage series|base|cover back to committed
    commit [-a] [-m MSG] [-v]  record a new committed version
    status                     show staged/unstaged changes
    log [-p]                   show committed history
    list                       list all series, marking the current one
    rebase [-i] [<onto>]       rebase HEAD onto base (or <onto>), then sync

Global flags:
    -v  increase verbosity (repeatable)
    -q  decrease verbosity
`)
}

func main() {
	flag.Var((*countFlag)(&verbose), "v", "increase verbosity")
	flag.Var((*countFlag)(&quiet), "q", "decrease verbosity")
	flag.Usage = usage
	flag.Parse()
	verbose -= quiet

	argv := flag.Args()
	if len(argv) == 0 {
		usage()
		os.Exit(1)
	}

	os.Exit(run(argv[0], argv[1:]))
}

// run dispatches a single subcommand. It installs the program's single
// errcatch boundary, so every raise() from deep in series.go/rebase.go is
// caught here.
func run(cmd string, args []string) (code int) {
	here := myfuncname()
	defer errcatch(func(e *Error) {
		e = erraddcallingcontext(here, e)
		fmt.Fprintln(os.Stderr, "git series:", e.Error())
		code = exitCode(e.Cause)
	})

	repo, err := openRepo()
	raiseif(err)

	// every command except start/checkout/delete operates on the series
	// SHEAD currently names.
	current := func() string {
		name, ok := repo.currentName()
		if !ok {
			raise(&NoCurrentSeriesError{})
		}
		return name
	}

	switch cmd {
	case "start":
		requireArgs(args, 1, "start <name>")
		repo.seriesStart(args[0])

	case "checkout":
		requireArgs(args, 1, "checkout <name>")
		repo.seriesCheckout(args[0])

	case "detach":
		repo.seriesDetach()

	case "delete":
		requireArgs(args, 1, "delete <name>")
		repo.seriesDelete(args[0])

	case "base":
		fs := flag.NewFlagSet("base", flag.ExitOnError)
		del := fs.Bool("d", false, "delete base")
		raiseif(fs.Parse(args))
		name := current()
		rest := fs.Args()
		switch {
		case *del:
			repo.seriesBaseDelete(name)
		case len(rest) == 1:
			repo.seriesBaseSet(name, rest[0])
		case len(rest) == 0:
			fmt.Println(repo.seriesBaseGet(name))
		default:
			raisef("usage: git series base [<commit>|-d]")
		}

	case "cover":
		fs := flag.NewFlagSet("cover", flag.ExitOnError)
		del := fs.Bool("d", false, "delete cover")
		raiseif(fs.Parse(args))
		name := current()
		if *del {
			repo.seriesCoverDelete(name)
		} else {
			repo.seriesCoverSet(name)
		}

	case "add":
		repo.seriesAdd(current(), args)

	case "unadd":
		repo.seriesUnadd(current(), args)

	case "commit":
		fs := flag.NewFlagSet("commit", flag.ExitOnError)
		all := fs.Bool("a", false, "commit working directly")
		msg := fs.String("m", "", "commit message")
		v := fs.Bool("v", false, "show diff in editor")
		raiseif(fs.Parse(args))
		repo.seriesCommit(current(), commitOptions{All: *all, Message: *msg, Verbose: *v})

	case "status":
		fmt.Print(repo.seriesStatus(current()))

	case "log":
		fs := flag.NewFlagSet("log", flag.ExitOnError)
		patch := fs.Bool("p", false, "show patch")
		raiseif(fs.Parse(args))
		fmt.Print(repo.seriesLog(current(), *patch))

	case "list":
		infos, err := repo.list()
		raiseif(err)
		for _, si := range infos {
			mark := " "
			if si.Current {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, si.Name)
		}

	case "rebase":
		fs := flag.NewFlagSet("rebase", flag.ExitOnError)
		interactive := fs.Bool("i", false, "interactive rebase")
		raiseif(fs.Parse(args))
		onto := ""
		if rest := fs.Args(); len(rest) == 1 {
			onto = rest[0]
		}
		repo.seriesRebase(current(), *interactive, onto)

	default:
		usage()
		return 1
	}
	return 0
}

func requireArgs(args []string, n int, usage string) {
	if len(args) != n {
		raisef("usage: git series %s", usage)
	}
}
