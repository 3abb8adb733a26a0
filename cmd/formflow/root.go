package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// app carries the settings resolved before any subcommand runs.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "formflow",
		Short: "Validate, inspect, and run multi-step form wizards",
		Long: `formflow loads declarative wizard definitions (steps, sections, fields, and
visibility/requiredness conditions), checks them, shows how they resolve for a
set of values, and walks them interactively in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./formflow.yaml or ~/.config/formflow/formflow.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-format", "human", "Log format: json or human")
	flags.String("schema-dir", "schemas", "Directory holding wizard definitions")
	flags.String("drafts-dir", "", "Directory holding saved drafts")
	flags.String("output-dir", "", "Directory receiving submissions")
	flags.Bool("strict", false, "Reject unknown condition shapes and undeclared field references")

	root.AddCommand(
		newValidateCmd(a),
		newResolveCmd(a),
		newRunCmd(a),
		newDraftsCmd(a),
		newImportOpenAPICmd(a),
		newVersionCmd(),
	)
	return root
}

var flagKeys = map[string]string{
	"debug":      "debug",
	"log-format": "log_format",
	"schema-dir": "schema_dir",
	"drafts-dir": "drafts_dir",
	"output-dir": "output_dir",
	"strict":     "strict",
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Debug: cfg.Debug, LogFormat: cfg.LogFormat, LogFile: cfg.LogFile})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.String("schema_dir", cfg.SchemaDir),
		zap.Bool("strict", cfg.Strict),
	)
	return nil
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func (a *app) loadStore() (*schema.Store, error) {
	store, err := schema.LoadDir(a.cfg.SchemaDir, schema.WithStrict(a.cfg.Strict))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("schemas loaded", zap.Strings("wizards", store.IDs()))
	return store, nil
}

func (a *app) wizard(id string) (*schema.Wizard, error) {
	store, err := a.loadStore()
	if err != nil {
		return nil, err
	}
	w, ok := store.Wizard(id)
	if !ok {
		return nil, fmt.Errorf("wizard %q not found in %s (have %v)", id, a.cfg.SchemaDir, store.IDs())
	}
	return w, nil
}
