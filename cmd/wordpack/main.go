// Copyright 2025 The WordPack Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word completion server and CLI [DBG] application.

WordPack answers completion and spelling lookups from a packed trie
dictionary file: one flat, read-only buffer in which every node is addressed
by byte offset. Lookups never allocate a tree; they walk the buffer.
Words missing from the dictionary are retried with a capital first letter
and then with one typo corrected.

It can operate as a MessagePack IPC server for integration with text
editors, or as a CLI application for testing and debugging.

# Usage

Start the server with default settings:

	wordpack

Use a custom dictionary and enable debug mode:

	wordpack -dict /path/to/en.dict -d

Run in CLI mode for interactive testing:

	wordpack -c -limit 10 -prmin 2

The dictionary path may also name a directory; the first *.dict file in it
is used. Relative paths are tried next to the binary, in the working
directory and under a data/ directory.

# Configuration

Runtime configuration is managed through a TOML file, see package config.
The file is created with defaults if it doesn't exist. Flags given on the
command line win over the file.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout:

	{"id": "req1", "p": "hel", "l": 20}
	{"id": "req1", "s": [{"w": "hello", "r": 1}, {"w": "help", "r": 2}], "c": 2, "t": 145}

See package server for lookup, candidates, info, reload and config ops.

# Command Line Flags

	-dict string
	    Dictionary file or directory (default from config)
	-config string
	    Config file (default ~/.config/wordpack/config.toml)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return in CLI mode
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-no-filter
	    Disable input filtering for debugging
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordpack/internal/cli"
	"github.com/bastiangx/wordpack/internal/utils"
	"github.com/bastiangx/wordpack/pkg/config"
	"github.com/bastiangx/wordpack/pkg/server"
	"github.com/bastiangx/wordpack/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "wordpack"
	gh      = "https://github.com/bastiangx/wordpack"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between config, completer and the chosen mode.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dictPath := flag.String("dict", "", "Dictionary file, or a directory holding *.dict files (default from config)")
	configFile := flag.String("config", "", "Path to config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - shows all raw dictionary entries (numbers, symbols, etc)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// stdout belongs to the IPC protocol
	log.SetOutput(os.Stderr)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		log.Print("Either env is not set or system is not supported")
		os.Exit(1)
	}

	requested := appConfig.Dict.Path
	if *dictPath != "" {
		requested = *dictPath
	}
	resolvedDict, err := pathResolver.ResolveDictFile(requested)
	if err != nil {
		log.Fatalf("Failed to find dictionary: %v", err)
	}
	log.Debugf("Using dictionary at: %s", resolvedDict)

	completer, err := suggest.NewCompleterFromFile(resolvedDict, suggest.Options{
		HotCacheSize: appConfig.Dict.HotCacheSize,
		MinFrequency: appConfig.Dict.MinFrequency,
		FuseTimeout:  appConfig.FuseTimeout(),
	})
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	log.Debug("Completer init done")

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(completer, *minPrefix, *maxPrefix, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, appConfig, configPath)
	showStartupInfo(resolvedDict, completer.Stats())

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordPack ] Packed trie word completions")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dictPath string, stats map[string]int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " WordPack ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s )", dictPath)
	log.Info("loaded", "words", stats["totalWords"], "bytes", stats["dictSize"], "format", stats["dictVersion"])
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")

	log.SetLevel(currentLevel)
}
