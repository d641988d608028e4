package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/piwi3910/presettab/internal/export"
	"github.com/piwi3910/presettab/internal/importer"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write presets to PDF, XLSX or QR code files",
	}
	cmd.AddCommand(newExportPDFCmd(a), newExportXLSXCmd(a), newExportQRCmd(a))
	return cmd
}

func newExportPDFCmd(a *app) *cobra.Command {
	var against string
	cmd := &cobra.Command{
		Use:   "pdf <type> <file.pdf>",
		Short: "Report how the selected preset differs from its parent or another preset",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			col := a.b.Collection(t)
			base := against
			if base == "" {
				base = col.Default().Name
				if parent := col.SelectedParent(); parent != nil {
					base = parent.Name
				}
			}
			selected := col.Selected().Name
			changes, err := col.Compare(base, selected)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s: %s compared with %s", t.Title(), selected, base)
			if err := export.ChangesPDF(args[1], title, changes); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d change(s) to %s\n", len(changes), args[1])
			return nil
		}),
	}
	cmd.Flags().StringVar(&against, "against", "", "preset to compare with (default: the parent preset)")
	return cmd
}

func newExportXLSXCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "xlsx <type> <file.xlsx> [preset...]",
		Short: "Write a side-by-side comparison workbook of presets",
		Long:  "Write a side-by-side comparison workbook of the named presets, or of every visible preset when none are named.",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			col := a.b.Collection(t)
			var presets []*preset.Preset
			if names := args[2:]; len(names) > 0 {
				for _, name := range names {
					p := col.Find(name)
					if p == nil {
						return fmt.Errorf("%w: %s preset %q", preset.ErrPresetNotFound, t, name)
					}
					presets = append(presets, p)
				}
			} else {
				for _, p := range col.Presets() {
					if p.IsVisible {
						presets = append(presets, p)
					}
				}
			}
			if err := export.ComparisonXLSX(args[1], col.Schema(), presets); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d preset(s) to %s\n", len(presets), args[1])
			return nil
		}),
	}
}

func newExportQRCmd(a *app) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "qr <type> <file.png>",
		Short: "Write the selected preset's overrides of its parent as a QR code",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := model.ParsePresetType(args[0])
			if err != nil {
				return err
			}
			col := a.b.Collection(t)
			overrides := model.NewLayer()
			for _, key := range col.CurrentDifferentFromParentOptions(false) {
				v, err := col.Edited().Get(key)
				if err != nil {
					return err
				}
				overrides.Set(key, v)
			}
			png, err := export.ShareQR(overrides, size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], png, 0644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d override(s) to %s\n", overrides.Len(), args[1])
			return nil
		}),
	}
	cmd.Flags().IntVar(&size, "size", 256, "image size in pixels")
	return cmd
}

func newImportBedCmd(a *app) *cobra.Command {
	var saveAs string
	cmd := &cobra.Command{
		Use:   "import-bed <file.dxf>",
		Short: "Set the selected printer's bed shape from a DXF outline",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			bed, warnings, err := importer.BedShapeDXF(args[0])
			for _, w := range warnings {
				a.log.Warn("bed import", "file", args[0], "warning", w)
			}
			if err != nil {
				return err
			}
			tab := a.b.Tab(model.TypePrinter)
			if err := tab.SetValue("bed_shape", bed); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "bed_shape = %s\n", bed)
			if saveAs == "" {
				return nil
			}
			if err := a.b.Save(model.TypePrinter, saveAs, false); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved printer preset %q\n", tab.Collection().Selected().Name)
			return a.saveConfig()
		}),
	}
	cmd.Flags().StringVar(&saveAs, "save", "", "save the printer preset under this name")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report preset files created, changed or removed on disk",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			events, err := a.store.Watch(ctx)
			if err != nil {
				return err
			}
			a.log.Info("watching presets", "dir", a.dataDir)
			for e := range events {
				if e.Removed() {
					fmt.Fprintf(a.out, "removed %s/%s\n", e.Type, e.Name)
					continue
				}
				if _, err := a.store.ReadPreset(e.Type, model.SchemaFor(e.Type), e.Name); err != nil {
					fmt.Fprintf(a.out, "invalid %s/%s: %v\n", e.Type, e.Name, err)
					continue
				}
				fmt.Fprintf(a.out, "changed %s/%s\n", e.Type, e.Name)
			}
			return nil
		}),
	}
}
