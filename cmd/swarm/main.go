// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Command swarm runs the workflow orchestration engine: an HTTP server
// exposing the swarm API, plus direct subcommands for running workflows
// and inspecting the TrustGraph ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// Version is stamped at build time.
var Version = "dev"

type globalFlags struct {
	ConfigPath string
	Profile    string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		err = runServe(ctx, global, args[1:])
	case "workflow":
		err = runWorkflow(ctx, global, args[1:])
	case "ledger":
		err = runLedger(ctx, global, args[1:])
	case "agents":
		err = runAgents(ctx, global, args[1:])
	case "version":
		fmt.Println("swarm", Version)
	case "help":
		printUsage()
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fatal(err)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		ConfigPath: getenv("SWARM_CONFIG", ""),
		Profile:    getenv("SWARM_PROFILE", ""),
	}

	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			flags.JSON = true
		case arg == "--help" || arg == "-h":
			flags.Help = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--config requires a path")
			}
			i++
			flags.ConfigPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--profile":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--profile requires a name")
			}
			i++
			flags.Profile = args[i]
		case strings.HasPrefix(arg, "--profile="):
			flags.Profile = strings.TrimPrefix(arg, "--profile=")
		default:
			rest = append(rest, args[i:]...)
			return flags, rest, nil
		}
	}
	return flags, rest, nil
}

func printUsage() {
	fmt.Print(`swarm - workflow orchestration with a tamper-evident ledger

Usage:
  swarm [global flags] <command> [args]

Commands:
  serve                      Run the HTTP API server
  workflow run               Create and execute a workflow
  workflow status <task-id>  Show a workflow's status
  ledger list                List TrustGraph entries
  ledger verify              Verify the hash chain
  ledger trace               Append one action to the ledger
  agents                     List the registered fleet
  version                    Print the version

Global flags:
  --config <path>    Configuration file (YAML); also SWARM_CONFIG
  --profile <name>   Config profile overlay; also SWARM_PROFILE
  --json             Print raw JSON instead of tables
  --help             Show this help
`)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
