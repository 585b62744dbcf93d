// Copyright 2025 The WordPack Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command ptdump inspects packed trie dictionary files.
//
//	ptdump info en.dict
//	ptdump words en.dict --limit 20
//	ptdump query en.dict cat kitty
//	ptdump fuse en.dict cet --timeout 10ms
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	log.SetOutput(os.Stderr)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
