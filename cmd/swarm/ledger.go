// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/trustgraph"
)

func runLedger(ctx context.Context, global globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("ledger requires a subcommand: list, verify, trace")
	}
	switch args[0] {
	case "list":
		return runLedgerList(ctx, global, args[1:])
	case "verify":
		return runLedgerVerify(ctx, global, args[1:])
	case "trace":
		return runLedgerTrace(ctx, global, args[1:])
	}
	return fmt.Errorf("unknown ledger subcommand %q", args[0])
}

func runLedgerList(ctx context.Context, global globalFlags, args []string) error {
	fs := flag.NewFlagSet("ledger list", flag.ContinueOnError)
	kind := fs.String("kind", "", "only entries of one capability kind")
	limit := fs.Int("limit", 0, "only the N most recent matching entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var f trustgraph.Filter
	if *kind != "" {
		k, err := swarm.ParseKind(*kind)
		if err != nil {
			return err
		}
		f.Kind = k
	}
	f.Limit = *limit

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	entries, err := d.manager.Entries(ctx, f)
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(entries)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"#", "Time", "Actor", "Kind", "Verb", "Tool", "Score", "Hash"})
	for i, e := range entries {
		score := ""
		if e.Action.Score != nil {
			score = fmt.Sprintf("%.2f", *e.Action.Score)
		}
		tw.AppendRow(table.Row{
			i + 1,
			e.Action.Timestamp.Format("2006-01-02 15:04:05"),
			e.Action.ActorID,
			e.Action.Kind,
			e.Action.Verb,
			e.Action.Tool,
			score,
			shortHash(e.Hash),
		})
	}
	tw.Render()
	return nil
}

func runLedgerVerify(ctx context.Context, global globalFlags, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("ledger verify takes no arguments")
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	report, err := d.manager.Verify(ctx)
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(report)
	}

	if report.Valid {
		fmt.Printf("chain valid: %d entries\n", report.Entries)
		return nil
	}
	fmt.Printf("chain INVALID at entry %s: %s\n", report.Broken, report.Reason)
	os.Exit(1)
	return nil
}

func runLedgerTrace(ctx context.Context, global globalFlags, args []string) error {
	fs := flag.NewFlagSet("ledger trace", flag.ContinueOnError)
	agent := fs.String("agent", "", "acting agent id (required)")
	kind := fs.String("kind", string(swarm.KindBuilder), "capability kind of the actor")
	action := fs.String("action", swarm.VerbExecute, "verb to record")
	tool := fs.String("tool", "", "tool used")
	vault := fs.String("vault", "", "vault the action touched")
	proposal := fs.String("proposal", "", "proposal text")
	score := fs.Float64("score", -1, "confidence score in [0, 1]")
	comment := fs.String("comment", "", "free-form comment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *agent == "" {
		return fmt.Errorf("--agent is required")
	}
	k, err := swarm.ParseKind(*kind)
	if err != nil {
		return err
	}

	act := swarm.NewAction(*agent, k, *action, *tool)
	act.Vault = *vault
	act.Proposal = *proposal
	act.Comment = *comment
	if *score >= 0 {
		act.Score = swarm.Float64(*score)
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	entry, err := d.manager.Trace(ctx, act)
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(entry)
	}

	fmt.Printf("logged entry %s\nhash: %s\n", entry.EntryID, entry.Hash)
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
