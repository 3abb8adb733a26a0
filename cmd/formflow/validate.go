package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func newValidateCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load every wizard in the schema directory and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !watch {
				store, err := a.loadStore()
				if err != nil {
					return err
				}
				return printStore(out, store)
			}

			watcher, err := schema.NewWatcher(a.cfg.SchemaDir, a.logger, schema.WithStrict(a.cfg.Strict))
			if err != nil {
				return err
			}
			if err := printStore(out, watcher.Store()); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchLoop(ctx, out, watcher, a.logger)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and re-validate when schema files change")
	return cmd
}

func watchLoop(ctx context.Context, out io.Writer, watcher *schema.Watcher, logger *zap.Logger) error {
	fmt.Fprintln(out, "watching for changes (Ctrl+C to stop)")
	return watcher.Run(ctx, func(store *schema.Store, err error) {
		if err != nil {
			logger.Warn("schema reload failed", zap.Error(err))
			fmt.Fprintf(out, "invalid: %v\n", err)
			return
		}
		_ = printStore(out, store)
	})
}

func printStore(out io.Writer, store *schema.Store) error {
	if store.Empty() {
		_, err := fmt.Fprintln(out, "no wizard definitions found")
		return err
	}
	for _, id := range store.IDs() {
		w, _ := store.Wizard(id)
		if _, err := fmt.Fprintf(out, "ok  %s (%d steps, %d fields)\n", id, w.Len(), len(w.Fields())); err != nil {
			return err
		}
	}
	return nil
}
