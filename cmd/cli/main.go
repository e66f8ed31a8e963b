package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonuclear/adapters/alerce"
	"gonuclear/adapters/panstarrs"
	"gonuclear/adapters/tns"
	"gonuclear/app"
	"gonuclear/internal/config"
	"gonuclear/internal/report"
	"gonuclear/models"
	"gonuclear/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gonuclear-cli",
		Short: "Classify astronomical transients as nuclear or off-nuclear",
	}

	rootCmd.AddCommand(
		newClassifyCmd(),
		newBatchCmd(),
		newCutoutCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*app.ClassifyService, ports.DetectionSource) {
	cfg := config.LoadCatalogOnly()

	var resolver ports.NameResolver
	if cfg.TNS.APIKey != "" {
		resolver = tns.New(cfg.TNS)
	}
	source := alerce.New(cfg.Catalog.AlerceBaseURL)
	return app.NewClassifyService(resolver, source, nil, cfg.Catalog.ConeRadiusArcsec), source
}

func newClassifyCmd() *cobra.Command {
	var (
		ra, dec                          float64
		galaxyRA, galaxyDec, galaxySigma float64
		confidence, snrThreshold         float64
		asJSON                           bool
		figuresDir                       string
	)

	cmd := &cobra.Command{
		Use:   "classify [name]",
		Short: "Classify one transient by IAU name, ZTF name, or coordinates",
		Long: `Classify a transient as nuclear or off-nuclear.

The target is an IAU name (2018hyz), a ZTF name (ZTF18acpdvos), or raw
coordinates via --ra/--dec. The galaxy center defaults to the catalog's
mean object position; override it with --galaxy-ra/--galaxy-dec/--galaxy-sigma.

Example: gonuclear-cli classify ZTF18acpdvos --galaxy-sigma 0.25 --figures-dir out/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := app.Target{
				Confidence:   confidence,
				SNRThreshold: snrThreshold,
			}
			if len(args) == 1 {
				target.Name = args[0]
			} else {
				if !cmd.Flags().Changed("ra") || !cmd.Flags().Changed("dec") {
					return fmt.Errorf("either a name or both --ra and --dec are required")
				}
				target.RA = &ra
				target.Dec = &dec
			}
			if cmd.Flags().Changed("galaxy-ra") {
				target.Galaxy = &app.GalaxyCenter{RA: galaxyRA, Dec: galaxyDec, SigmaArcsec: galaxySigma}
			}

			svc, source := newService()
			verdict, err := svc.Classify(cmd.Context(), target)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(verdict); err != nil {
					return err
				}
			} else {
				fmt.Print(report.Markdown(verdict))
			}

			if figuresDir != "" {
				return writeFigures(cmd, figuresDir, verdict, source)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", 0, "Right ascension in degrees")
	cmd.Flags().Float64Var(&dec, "dec", 0, "Declination in degrees")
	cmd.Flags().Float64Var(&galaxyRA, "galaxy-ra", 0, "Galaxy center RA in degrees")
	cmd.Flags().Float64Var(&galaxyDec, "galaxy-dec", 0, "Galaxy center Dec in degrees")
	cmd.Flags().Float64Var(&galaxySigma, "galaxy-sigma", 0, "Galaxy position uncertainty in arcsec")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence level for limits (default 0.95)")
	cmd.Flags().Float64Var(&snrThreshold, "snr-threshold", 0, "S/N threshold for a detected offset (default 3)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON instead of markdown")
	cmd.Flags().StringVar(&figuresDir, "figures-dir", "", "Write diagnostic PNG figures to this directory")

	return cmd
}

func writeFigures(cmd *cobra.Command, dir string, verdict *models.Verdict, source ports.DetectionSource) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create figures dir: %w", err)
	}
	ras, decs, err := source.Detections(cmd.Context(), verdict.ZTFName)
	if err != nil {
		return err
	}

	for _, kind := range []report.FigureKind{
		report.FigureDetections, report.FigureHistogram, report.FigurePValue,
	} {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", verdict.DisplayName(), kind))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := report.WriteFigure(f, kind, verdict, ras, decs); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}
	return nil
}

func newBatchCmd() *cobra.Command {
	var (
		maxParallel int64
		out         string
	)

	cmd := &cobra.Command{
		Use:     "batch [names...]",
		Short:   "Classify several transients and export the verdicts as xlsx",
		Example: "  gonuclear-cli batch ZTF18acpdvos ZTF19aapreis 2018hyz --out verdicts.xlsx",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := make([]app.Target, len(args))
			for i, name := range args {
				targets[i] = app.Target{Name: name}
			}

			svc, _ := newService()
			results := svc.ClassifyBatch(cmd.Context(), targets, maxParallel)

			verdicts := make([]*models.Verdict, 0, len(results))
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %v\n", r.Target.Name, r.Err)
					continue
				}
				verdicts = append(verdicts, r.Verdict)
				fmt.Printf("%s: nuclear=%v p=%.4g\n", r.Verdict.DisplayName(),
					r.Verdict.IsNuclear, r.Verdict.PValue)
			}

			if out != "" && len(verdicts) > 0 {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteWorkbook(f, verdicts); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "wrote %s (%d verdicts)\n", out, len(verdicts))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d targets failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&maxParallel, "max-parallel", 4, "Maximum concurrent classifications")
	cmd.Flags().StringVar(&out, "out", "", "Write verdicts to this xlsx file")

	return cmd
}

func newCutoutCmd() *cobra.Command {
	var (
		sizeArcsec float64
		out        string
	)

	cmd := &cobra.Command{
		Use:   "cutout [ra] [dec]",
		Short: "Download a Pan-STARRS FITS cutout around a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ra, dec float64
			if _, err := fmt.Sscanf(args[0], "%f", &ra); err != nil {
				return fmt.Errorf("invalid ra %q", args[0])
			}
			if _, err := fmt.Sscanf(args[1], "%f", &dec); err != nil {
				return fmt.Errorf("invalid dec %q", args[1])
			}

			cfg := config.LoadCatalogOnly()
			client := panstarrs.New(cfg.Catalog.PanstarrsBaseURL)
			data, err := client.Cutout(cmd.Context(), ra, dec, sizeArcsec)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().Float64Var(&sizeArcsec, "size", 60, "Cutout size in arcsec")
	cmd.Flags().StringVar(&out, "out", "cutout.fits", "Output FITS path")

	return cmd
}
