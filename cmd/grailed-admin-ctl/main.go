// Command grailed-admin-ctl drives the scraping and embedding backend from a terminal using the
// same control and stream rules as the dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to callers
	}
}

func kindFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "kind",
		Usage:    "job kind: scraping, image-embedding or text-embedding",
		Required: true,
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "grailed-admin-ctl",
		Usage:     "control Grailed scraping and embedding jobs",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "actor",
				Usage:   "name recorded in the audit trail",
				Value:   defaultActor(),
				Sources: cli.EnvVars("GRAILED_ADMIN_ACTOR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending audit database migrations",
				Action: migrateAction,
			},
			{
				Name:  "job",
				Usage: "start, stop or poll a job",
				Commands: []*cli.Command{
					{Name: "start", Usage: "start a job", Flags: []cli.Flag{kindFlag()}, Action: jobAction(opStart)},
					{Name: "stop", Usage: "stop a job", Flags: []cli.Flag{kindFlag()}, Action: jobAction(opStop)},
					{Name: "status", Usage: "fetch a job's status", Flags: []cli.Flag{kindFlag()}, Action: jobAction(opStatus)},
				},
			},
			{
				Name:  "delete",
				Usage: "delete scraped data",
				Commands: []*cli.Command{
					{
						Name:  "substrings",
						Usage: "delete items whose title contains any value",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{Name: "value", Usage: "title substring (repeatable)", Required: true},
						},
						Action: deleteSubstringsAction,
					},
					{
						Name:  "designers",
						Usage: "delete items by the listed designers",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{Name: "value", Usage: "designer name (repeatable)", Required: true},
						},
						Action: deleteDesignersAction,
					},
					{
						Name:  "low-count",
						Usage: "delete designers with fewer items than the threshold",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "threshold", Usage: "minimum item count to keep", Required: true},
						},
						Action: deleteLowCountAction,
					},
				},
			},
			{
				Name:  "logs",
				Usage: "follow job logs",
				Commands: []*cli.Command{
					{
						Name:  "tail",
						Usage: "stream a job's backend log until interrupted",
						Flags: []cli.Flag{
							kindFlag(),
							&cli.BoolFlag{Name: "summary", Usage: "print the summary when the stream ends"},
						},
						Action: tailAction,
					},
				},
			},
			{
				Name:  "audit",
				Usage: "inspect the audit trail",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list recent control actions",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "kind", Usage: "filter by job kind"},
							&cli.StringFlag{Name: "action", Usage: "filter by action"},
							&cli.IntFlag{Name: "limit", Usage: "maximum entries", Value: 50},
						},
						Action: auditListAction,
					},
				},
			},
		},
	}
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}
