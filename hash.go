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

// Git-series | Hash type to work with object ids
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"

	git "github.com/git-series/git-series/internal/git"
)

const HashRawSize = 20 // SHA-1; everything else is oblivious to digest length

// Hash is a git object id in raw form.
// NOTE zero value of Hash{} is the null hash.
type Hash struct {
	h [HashRawSize]byte
}

var _ fmt.Stringer = Hash{}

func (h Hash) String() string {
	return hex.EncodeToString(h.h[:])
}

func HashParse(s string) (Hash, error) {
	h := Hash{}
	if hex.DecodedLen(len(s)) != HashRawSize {
		return Hash{}, fmt.Errorf("hashparse: %q invalid", s)
	}
	_, err := hex.Decode(h.h[:], Bytes(s))
	if err != nil {
		return Hash{}, fmt.Errorf("hashparse: %q invalid: %s", s, err)
	}
	return h, nil
}

var _ fmt.Scanner = (*Hash)(nil)

func (h *Hash) Scan(s fmt.ScanState, ch rune) error {
	switch ch {
	case 's', 'v':
	default:
		return fmt.Errorf("Hash.Scan: invalid verb %q", ch)
	}

	tok, err := s.Token(true, nil)
	if err != nil {
		return err
	}

	*h, err = HashParse(string(tok))
	return err
}

// IsZero reports whether h is the null hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// AsOid converts h to the *git.Oid git2go expects.
func (h Hash) AsOid() *git.Oid {
	oid := git.Oid(h.h)
	return &oid
}

// HashFromOid converts a *git.Oid (as returned by git2go calls) to a Hash.
func HashFromOid(oid *git.Oid) Hash {
	return Hash{h: [HashRawSize]byte(*oid)}
}

// ByHash sorts a []Hash into a stable, repeatable order - used for the
// extra-parents list of a series commit, whose order carries no meaning but
// should not jitter between rebuilds.
type ByHash []Hash

func (p ByHash) Len() int           { return len(p) }
func (p ByHash) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p ByHash) Less(i, j int) bool { return bytes.Compare(p[i].h[:], p[j].h[:]) < 0 }
