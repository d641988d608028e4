package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/presettab/internal/bundle"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

func newListCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:       "list <type>",
		Short:     "List the presets of a type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: presetTypeNames(),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			col := a.b.Collection(t)
			showIncompatible := a.b.Tab(t).ShowIncompatible()
			for _, p := range col.Presets() {
				selected := p == col.Selected()
				if !all && !selected && (!p.IsVisible || (!p.IsCompatible && !showIncompatible)) {
					continue
				}
				marker := " "
				if selected {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%s %s (%s)\n", marker, p.Label(selected && col.CurrentIsDirty()), strings.Join(presetFlags(p), ", "))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden and incompatible presets")
	return cmd
}

func presetFlags(p *preset.Preset) []string {
	var flags []string
	switch {
	case p.IsDefault:
		flags = append(flags, "default")
	case p.IsSystem:
		flags = append(flags, "system")
	case p.IsExternal:
		flags = append(flags, "external")
	default:
		flags = append(flags, "user")
	}
	if !p.IsCompatible {
		flags = append(flags, "incompatible")
	}
	return flags
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <type> <name>",
		Short: "Select a preset, switching dependent presets to compatible ones",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			res, err := a.b.Select(t, args[1])
			if err != nil {
				return err
			}
			a.printSwitch(res)
			return a.saveConfig()
		}),
	}
}

func (a *app) printSwitch(res bundle.SwitchResult) {
	fmt.Fprintf(a.out, "%s: %s -> %s\n", res.Type, res.Previous, res.Selected)
	if res.TechnologyChanged {
		fmt.Fprintln(a.out, "printer technology changed")
	}
	for _, t := range res.Switched {
		fmt.Fprintf(a.out, "%s: switched to %s\n", t, a.b.Collection(t).Selected().Name)
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "status <type>",
		Short: "Show where the selected preset comes from and which options differ",
		Long: `Show the selected preset of a type: its description, the status of every
option category and the options that differ from the saved preset and from
its parent. --set edits the preset for this report only.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			tab := a.b.Tab(t)
			if err := applySets(tab, sets); err != nil {
				return err
			}
			a.printStatus(tab)
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set an option, key=value (repeatable)")
	return cmd
}

func (a *app) printStatus(tab *bundle.Tab) {
	col := tab.Collection()
	fmt.Fprintf(a.out, "%s: %s\n\n", tab.Type().Title(), col.Selected().Label(col.CurrentIsDirty()))
	fmt.Fprintln(a.out, tab.Description())
	fmt.Fprintln(a.out)

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSYSTEM\tMODIFIED")
	for _, c := range tab.Categories() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, yesNo(c.IsSystem), yesNo(c.IsModified))
	}
	w.Flush()

	status := tab.Status()
	if keys := status.NonSystem(); len(keys) > 0 {
		fmt.Fprintf(a.out, "\nDiffers from parent: %s\n", strings.Join(keys, ", "))
	}
	if changes := col.Changes(); len(changes) > 0 {
		fmt.Fprintln(a.out, "\nUnsaved changes:")
		a.printChanges(changes)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *app) printChanges(changes []preset.Change) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tOLD\tNEW")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Key, c.Old, c.New)
	}
	w.Flush()
}

func newSaveCmd(a *app) *cobra.Command {
	var (
		sets   []string
		detach bool
	)
	cmd := &cobra.Command{
		Use:   "save <type> <name>",
		Short: "Save the selected preset, with --set edits, under a name",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			tab := a.b.Tab(t)
			if err := applySets(tab, sets); err != nil {
				return err
			}
			if detach && !tab.CanDetach() {
				return fmt.Errorf("%s preset %q has no parent to detach from", t, tab.Collection().Selected().Name)
			}
			if err := a.b.Save(t, args[1], detach); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %s preset %q\n", t, tab.Collection().Selected().Name)
			return a.saveConfig()
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set an option before saving, key=value (repeatable)")
	cmd.Flags().BoolVar(&detach, "detach", false, "save without a parent preset")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type>",
		Short: "Delete the selected user preset and select the next one",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			res, err := a.b.Delete(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s preset %q\n", t, res.Previous)
			a.printSwitch(res)
			return a.saveConfig()
		}),
	}
}

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <type> <a> <b>",
		Short: "List the options that differ between two presets",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			changes, err := a.b.Collection(t).Compare(args[1], args[2])
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				fmt.Fprintln(a.out, "presets are identical")
				return nil
			}
			a.printChanges(changes)
			return nil
		}),
	}
}
