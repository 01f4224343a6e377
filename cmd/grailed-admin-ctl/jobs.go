package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/service"
	"github.com/target/grailed-admin/internal/store"
)

type jobOp string

const (
	opStart  jobOp = "start"
	opStop   jobOp = "stop"
	opStatus jobOp = "status"
)

func jobAction(op jobOp) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		kind, err := kindFrom(cmd)
		if err != nil {
			return err
		}
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		stores := store.NewSet()
		defer stores.Close()
		st := stores.Get(kind)

		ctx = actorContext(ctx, cmd)
		control := rt.services.Control
		switch op {
		case opStart:
			err = control.Start(ctx, st)
		case opStop:
			err = control.Stop(ctx, st)
		default:
			err = control.FetchStatus(ctx, st)
		}
		printSnapshot(cmd.Root().Writer, st.Snapshot())
		return err
	}
}

// printSnapshot writes the console lines followed by the summary table.
func printSnapshot(w io.Writer, snap store.Snapshot) {
	for _, ev := range snap.Logs {
		printLogLine(w, ev)
	}
	state := "stopped"
	if snap.Status.Active {
		state = "active"
	}
	fmt.Fprintf(w, "\n%s: %s\n", snap.Status.Kind.Label(), state)

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	for _, row := range summaryRows(snap.Status.Kind, snap.Status.Summary) {
		_ = table.Append(row[0], row[1])
	}
	_ = table.Render()
}

func summaryRows(kind job.Kind, s job.Summary) [][2]string {
	if kind.IsEmbedding() {
		return [][2]string{
			{"Index total records", s.IndexTotalRecords},
			{"Last embed time", s.LastEmbedTime},
			{"Index size", s.IndexSize},
		}
	}
	return [][2]string{
		{"Total items", s.TotalItems},
		{"Last brand scraped", s.LastBrandScraped},
		{"Last scroll count", s.LastScrollCount},
		{"Last scrape time", s.LastScrapeTime},
		{"Remaining designers", s.RemainingDesigners},
		{"Storage used", s.StorageUsed},
	}
}

func printLogLine(w io.Writer, ev job.LogEvent) {
	fmt.Fprintf(w, "%s [%s] %s\n", ev.Timestamp, ev.Level, ev.Message)
}

// tailAction prints every event the backend log stream delivers until the stream ends or the
// command is interrupted. The local store starts stopped, so a fault never issues a stop.
func tailAction(ctx context.Context, cmd *cli.Command) error {
	kind, err := kindFrom(cmd)
	if err != nil {
		return err
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	stores := store.NewSet()
	defer stores.Close()
	st := stores.Get(kind)

	unsubscribe, changes := st.Subscribe()
	defer unsubscribe()

	sub, err := rt.services.Consumer.Subscribe(ctx, st)
	if err != nil {
		return err
	}
	defer sub.Close()

	w := cmd.Root().Writer
	fmt.Fprintf(w, "following %s log (ctrl-c to stop)\n", kind.Label())
	var t tail
	for {
		select {
		case <-ctx.Done():
			t.flush(w, st.Snapshot())
			return finishTail(w, cmd, st, nil)
		case <-sub.Done():
			t.flush(w, st.Snapshot())
			return finishTail(w, cmd, st, streamErr(sub))
		case <-changes:
			t.flush(w, st.Snapshot())
		}
	}
}

func finishTail(w io.Writer, cmd *cli.Command, st *store.Store, err error) error {
	if cmd.Bool("summary") {
		snap := st.Snapshot()
		snap.Logs = nil
		printSnapshot(w, snap)
	}
	return err
}

func streamErr(sub *service.Subscription) error {
	if err := sub.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("log stream: %w", err)
	}
	return nil
}

// tail remembers the last printed event so each flush prints only new lines.
type tail struct {
	lastID string
}

func (t *tail) flush(w io.Writer, snap store.Snapshot) {
	start := 0
	if t.lastID != "" {
		for i := len(snap.Logs) - 1; i >= 0; i-- {
			if snap.Logs[i].ID == t.lastID {
				start = i + 1
				break
			}
		}
	}
	for _, ev := range snap.Logs[start:] {
		printLogLine(w, ev)
	}
	if n := len(snap.Logs); n > 0 {
		t.lastID = snap.Logs[n-1].ID
	}
}
