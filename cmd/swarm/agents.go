// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func runAgents(ctx context.Context, global globalFlags, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("agents takes no arguments")
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	infos, err := d.manager.Agents()
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(infos)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Agent", "Kind", "Status"})
	for _, info := range infos {
		tw.AppendRow(table.Row{info.AgentID, info.Kind, info.Status})
	}
	tw.Render()
	return nil
}
