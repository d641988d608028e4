package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/presettab/internal/bundle"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/store"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	dataDir  string
	logLevel string
	yes      bool

	out    io.Writer
	errOut io.Writer

	log   *slog.Logger
	store *store.FileStore
	cfg   model.AppConfig
	b     *bundle.Bundle
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:          "presettab",
		Short:        "Manage print, filament and printer presets",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", store.DefaultConfigDir(), "directory holding presets, vendor bundles and config.json")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config.json)")
	root.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to every prompt")

	root.AddCommand(
		newListCmd(a),
		newSelectCmd(a),
		newStatusCmd(a),
		newSaveCmd(a),
		newDeleteCmd(a),
		newDiffCmd(a),
		newExportCmd(a),
		newImportBedCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) configPath() string {
	return filepath.Join(a.dataDir, "config.json")
}

// open loads the config and every preset into a fresh bundle.
func (a *app) open() error {
	cfg, err := store.LoadAppConfig(a.configPath())
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", a.configPath(), err)
	}
	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log, err = newLogger(a.errOut, level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.store = store.NewFileStore(a.dataDir, a.log)
	a.b = bundle.New(bundle.Options{
		Storage: a.store,
		Prompts: a.prompts(),
		Logger:  a.log,
		Config:  &a.cfg,
	})
	return a.store.LoadInto(a.b)
}

// run wraps a subcommand body so it runs against a loaded bundle.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (a *app) saveConfig() error {
	return store.SaveAppConfig(a.configPath(), a.cfg)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// prompts answers every question with --yes and reports it on stderr.
func (a *app) prompts() bundle.Prompts {
	answer := func(question string) bool {
		if a.yes {
			fmt.Fprintf(a.errOut, "%s? yes\n", question)
			return true
		}
		fmt.Fprintf(a.errOut, "%s? no (rerun with --yes to accept)\n", question)
		return false
	}
	return bundle.Prompts{
		MayDiscard: func(r bundle.DiscardRequest) bool {
			return answer(fmt.Sprintf("Discard %d unsaved change(s) to %s preset %q", len(r.Changes), r.Type, r.Preset))
		},
		MaySwitchTechnology: func(from, to model.Technology) bool {
			return answer(fmt.Sprintf("Switch printer technology from %s to %s", from, to))
		},
		ConfirmReplace: func(t model.PresetType, name string) bool {
			return answer(fmt.Sprintf("Replace %s preset %q", t, name))
		},
	}
}

func presetTypeNames() []string {
	var names []string
	for _, t := range model.PresetTypes() {
		names = append(names, t.String())
	}
	return names
}

// applySets applies key=value assignments to the edited preset of tab. Count
// fields such as extruders_count take an integer.
func applySets(tab *bundle.Tab, sets []string) error {
	schema := tab.Collection().Schema()
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, want key=value", s)
		}
		key = strings.TrimSpace(key)
		if _, ok := schema.Count(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if err := tab.SetCount(key, n); err != nil {
				return err
			}
			continue
		}
		def, ok := schema.Def(key)
		if !ok {
			return fmt.Errorf("unknown %s option %q", schema.Type, key)
		}
		v, err := model.Parse(def.Kind, raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := tab.SetValue(key, v); err != nil {
			return err
		}
	}
	return nil
}
