package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/drafts"
	"github.com/goliatone/go-formflow/pkg/prompt"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		resume     string
		valuesFile string
		pageSize   int
	)
	cmd := &cobra.Command{
		Use:   "run <wizard-id>",
		Short: "Walk a wizard interactively and submit the answers",
		Long: `run asks for every visible field step by step, re-evaluating conditions after
each answer. Declining the final confirmation saves a draft that can be picked
up again with --resume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wizard(args[0])
			if err != nil {
				return err
			}
			store, err := drafts.NewFileStore(a.draftsDir())
			if err != nil {
				return err
			}
			prefill, err := readValues(cmd.InOrStdin(), valuesFile)
			if err != nil {
				return err
			}

			options := []wizard.Option{
				wizard.WithDrafts(store),
				wizard.WithSubmitter(submit.Sanitizing(w, submit.NewFileSubmitter(a.outputDir()))),
				wizard.WithLogger(a.logger),
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var c *wizard.Controller
			if resume != "" {
				c, err = wizard.Resume(ctx, w, resume, options...)
			} else {
				c, err = wizard.New(w, append(options, wizard.WithValues(prefill))...)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			runner := prompt.NewRunner(prompt.NewSurveyDriver(out), prompt.WithLogger(a.logger), prompt.WithPageSize(pageSize))
			res, err := runner.Run(ctx, c)
			switch {
			case errors.Is(err, prompt.ErrAborted):
				if saveErr := c.SaveDraft(context.WithoutCancel(ctx)); saveErr != nil {
					a.logger.Warn("draft not saved", zap.Error(saveErr))
					return err
				}
				fmt.Fprintf(out, "draft saved; resume with: formflow run %s --resume %s\n", w.ID, c.SessionID())
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(out, "submitted %s (%s)\n", res.Receipt.ID, res.Receipt.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&resume, "resume", "", "Session id of a saved draft to continue")
	cmd.Flags().StringVarP(&valuesFile, "values", "f", "", "JSON file with values to prefill")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Options shown at once in select prompts")
	return cmd
}

func (a *app) draftsDir() string {
	if a.cfg.DraftsDir != "" {
		return a.cfg.DraftsDir
	}
	return filepath.Join(".formflow", "drafts")
}

func (a *app) outputDir() string {
	if a.cfg.OutputDir != "" {
		return a.cfg.OutputDir
	}
	return filepath.Join(".formflow", "submissions")
}
