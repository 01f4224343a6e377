package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/service"
	"github.com/target/grailed-admin/internal/store"
)

var errEmptyFilter = errors.New("nothing to delete")

func deleteSubstringsAction(ctx context.Context, cmd *cli.Command) error {
	return runFilter(ctx, cmd, service.FilterRequest{Substrings: cmd.StringSlice("value")})
}

func deleteDesignersAction(ctx context.Context, cmd *cli.Command) error {
	return runFilter(ctx, cmd, service.FilterRequest{Designers: cmd.StringSlice("value")})
}

func deleteLowCountAction(ctx context.Context, cmd *cli.Command) error {
	threshold := cmd.Int("threshold")
	return runFilter(ctx, cmd, service.FilterRequest{Threshold: &threshold})
}

// checkFilter applies the same normalisation and limits as the dashboard's filter form.
func checkFilter(req *service.FilterRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if req.Empty() {
		return errEmptyFilter
	}
	return nil
}

func runFilter(ctx context.Context, cmd *cli.Command, req service.FilterRequest) error {
	if err := checkFilter(&req); err != nil {
		return err
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	stores := store.NewSet()
	defer stores.Close()
	st := stores.Get(job.KindScraping)

	err = rt.services.Control.RunFilter(actorContext(ctx, cmd), st, req)
	w := cmd.Root().Writer
	for _, ev := range st.Snapshot().Logs {
		printLogLine(w, ev)
	}
	return err
}
