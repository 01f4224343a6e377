package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/target/grailed-admin/internal/bootstrap"
	"github.com/target/grailed-admin/internal/domain/audit"
	"github.com/target/grailed-admin/internal/domain/job"
)

func migrateAction(ctx context.Context, _ *cli.Command) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.db == nil {
		return errNoDatabase
	}
	return bootstrap.RunMigrations(ctx, rt.db, rt.logger)
}

func auditListAction(ctx context.Context, cmd *cli.Command) error {
	opts := audit.ListOptions{
		Action: audit.Action(cmd.String("action")),
		Limit:  cmd.Int("limit"),
	}
	if k := cmd.String("kind"); k != "" {
		kind, err := job.ParseKind(k)
		if err != nil {
			return fmt.Errorf("--kind: %w", err)
		}
		opts.Kind = kind.String()
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.services.Audit == nil {
		return errNoDatabase
	}
	entries, err := rt.services.Audit.List(ctx, opts)
	if err != nil {
		return err
	}
	printAuditEntries(cmd.Root().Writer, entries)
	return nil
}

func printAuditEntries(w io.Writer, entries []audit.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no audit entries")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("When", "Actor", "Kind", "Action", "Outcome", "Message")
	for _, e := range entries {
		_ = table.Append(
			e.OccurredAt.Local().Format(time.DateTime),
			e.Actor,
			e.Kind,
			string(e.Action),
			string(e.Outcome),
			truncate(e.Message, 60),
		)
	}
	_ = table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
