package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/secretagent/internal/server"
	"github.com/tjfontaine/secretagent/internal/storage"
	"github.com/tjfontaine/secretagent/internal/storage/sqlite"
	"github.com/tjfontaine/secretagent/pkg/secretagent"
)

func newTranslateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [sentence]",
		Short: "Translate an English sentence to French",
		Example: `  secretagent translate --service anthropic --model claude-haiku-4-5-20251001 "What's for lunch today?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := secretagent.Call[string](cmd.Context(), c.stubs.translate, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newSportsCmd(c *cli) *cobra.Command {
	var recordPath string
	cmd := &cobra.Command{
		Use:   "sports [sentence]",
		Short: "Decide whether a sentence about sports is plausible",
		Long: `Runs the sports-understanding workflow: the sentence is split into a player,
an action, and an optional event, each is mapped to a sport, and the sports
are checked for consistency.

With --record the calls are recorded and saved as a run in a SQLite database.`,
		Example: `  secretagent sports --echo "Tim Duncan scored from inside the paint."
  secretagent sports --record runs.db "DeMar DeRozan was called for the goal tend."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sentence := strings.Join(args, " ")
			if recordPath == "" {
				_, err := sportsUnderstanding(cmd.Context(), c.stubs, cmd.OutOrStdout(), sentence)
				return err
			}

			store, err := sqlite.New(recordPath)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			run, err := recordRun(cmd.Context(), c.agent, store, sentence, func() error {
				_, err := sportsUnderstanding(cmd.Context(), c.stubs, cmd.OutOrStdout(), sentence)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s (%d calls)\n", run.ID, len(run.Events))
			return nil
		},
	}
	cmd.Flags().StringVar(&recordPath, "record", "", "SQLite database to save the recorded calls to")
	return cmd
}

// recordRun runs fn with recording on and saves the calls it completed as a
// run named name. A failing fn still saves the calls completed before it
// failed.
func recordRun(ctx context.Context, a *secretagent.Agent, store storage.RunStore, name string, fn func() error) (*storage.Run, error) {
	var events []secretagent.Event
	runErr := a.Recording(func(log *secretagent.Log) error {
		err := fn()
		events = log.Events()
		return err
	})

	run, err := storage.NewRun(name, events)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return nil, errors.Join(runErr, fmt.Errorf("save run: %w", err))
	}
	if runErr != nil {
		return nil, runErr
	}
	return run, nil
}

func newRunsCmd(c *cli) *cobra.Command {
	var limit int
	var show string
	cmd := &cobra.Command{
		Use:   "runs [database]",
		Short: "List recorded runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(args[0])
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if show != "" {
				run, err := store.GetRun(cmd.Context(), show)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "FUNC\tARGS\tOUTPUT\tSERVICE\tMODEL")
				for _, ev := range run.Events {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ev.Func, ev.ArgsLiteral, ev.OutputLiteral, ev.Service, ev.Model)
				}
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), storage.ListOptions{Limit: limit})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tCREATED\tCALLS\tNAME")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.EventCount, r.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&show, "show", "", "print the calls of the run with this ID")
	return cmd
}

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo stubs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stubs []server.Stub
			for _, s := range c.stubs.all() {
				stubs = append(stubs, s)
			}
			srv := server.New(addr, c.logger, stubs...)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			}

			c.logger.Info("shutdown signal received, stopping server")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				c.logger.Error("shutdown error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
