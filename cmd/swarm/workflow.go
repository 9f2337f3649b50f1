// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cuttlefish-labs/swarm/pkg/orchestrator"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

func runWorkflow(ctx context.Context, global globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("workflow requires a subcommand: run, status")
	}
	switch args[0] {
	case "run":
		return runWorkflowRun(ctx, global, args[1:])
	case "status":
		return runWorkflowStatus(ctx, global, args[1:])
	}
	return fmt.Errorf("unknown workflow subcommand %q", args[0])
}

func runWorkflowRun(ctx context.Context, global globalFlags, args []string) error {
	fs := flag.NewFlagSet("workflow run", flag.ContinueOnError)
	title := fs.String("title", "", "workflow title (required)")
	description := fs.String("description", "", "workflow description")
	strategy := fs.String("strategy", string(swarm.StrategySequential), "sequential, parallel or hybrid")
	agentsCSV := fs.String("agents", "", "comma-separated capability kinds (required)")
	contextJSON := fs.String("context", "", "initial workflow context as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	st, err := swarm.ParseStrategy(*strategy)
	if err != nil {
		return err
	}
	var kinds []swarm.CapabilityKind
	for _, s := range strings.Split(*agentsCSV, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k, err := swarm.ParseKind(s)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return fmt.Errorf("--agents requires at least one capability kind")
	}
	taskCtx := map[string]any{}
	if *contextJSON != "" {
		if err := json.Unmarshal([]byte(*contextJSON), &taskCtx); err != nil {
			return fmt.Errorf("parse --context: %w", err)
		}
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	task, result, err := d.manager.Run(ctx, *title, *description, st, kinds, taskCtx)
	if err != nil {
		return err
	}

	if global.JSON {
		return printJSON(map[string]any{
			"task_id":   task.ID,
			"status":    task.Status,
			"result":    result,
			"audit_log": task.AuditLog,
		})
	}

	fmt.Printf("Task %s finished with status %s\n\n", task.ID, task.Status)
	printOutcomes(result)
	if len(task.AuditLog) > 0 {
		fmt.Println("\nAudit log:")
		for _, line := range task.AuditLog {
			fmt.Println("  " + line)
		}
	}
	return nil
}

func runWorkflowStatus(ctx context.Context, global globalFlags, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("workflow status requires exactly one task id")
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	snap, err := d.manager.Status(args[0])
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(snap)
	}

	printSnapshot(snap)
	return nil
}

func printSnapshot(snap orchestrator.StatusSnapshot) {
	kinds := make([]string, 0, len(snap.Capabilities))
	for _, k := range snap.Capabilities {
		kinds = append(kinds, string(k))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendRow(table.Row{"Task", snap.TaskID})
	tw.AppendRow(table.Row{"Title", snap.Title})
	tw.AppendRow(table.Row{"Status", snap.Status})
	tw.AppendRow(table.Row{"Strategy", snap.Strategy})
	tw.AppendRow(table.Row{"Capabilities", strings.Join(kinds, ", ")})
	tw.AppendRow(table.Row{"Created", snap.CreatedAt.Format("2006-01-02 15:04:05")})
	tw.Render()

	if snap.Result != nil {
		fmt.Println()
		printOutcomes(snap.Result)
	}
	if len(snap.AuditLog) > 0 {
		fmt.Println("\nAudit log:")
		for _, line := range snap.AuditLog {
			fmt.Println("  " + line)
		}
	}
}

func printOutcomes(result *swarm.Result) {
	if result == nil || len(result.Results) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Capability", "Summary", "Confidence", "Error"})
	for _, kind := range swarm.Kinds() {
		o, ok := result.Results[kind]
		if !ok || o == nil {
			continue
		}
		tw.AppendRow(table.Row{kind, o.Summary, fmt.Sprintf("%.2f", o.Confidence), o.Err})
	}
	tw.Render()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
