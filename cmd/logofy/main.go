// Command logofy downloads company logos from a domain dataset, removes
// duplicates, and produces color/minimalism/emotion analyses and color
// palettes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	logofy "github.com/anatolykoptev/go-logofy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &logofy.Config{ManifestPath: "logos_manifest.csv"}
	var verbose bool

	root := &cobra.Command{
		Use:   "logofy",
		Short: "Download, deduplicate, and analyze company logos",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newDownloadCmd(cfg), newAnalyzeCmd(cfg), newPaletteCmd(cfg))
	return root
}

func newDownloadCmd(cfg *logofy.Config) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download logos for every brand in the dataset and remove duplicates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domains, err := logofy.LoadDomains(input)
			if err != nil {
				return err
			}
			selected := logofy.SelectDomains(domains)

			fmt.Println("Starting logo download...")
			stats := logofy.NewEngine(cfg).Run(cmd.Context(), selected)
			fmt.Printf("Finished: %d kept, %d failed, %d exact duplicates, %d near duplicates moved, %d undecodable removed\n",
				stats.Fetched, stats.FetchFailed, stats.ExactDuplicates, stats.NearDuplicates, stats.Corrupted)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "logos.snappy.parquet", "dataset with a domain column (.parquet or .csv)")
	return cmd
}

func newAnalyzeCmd(cfg *logofy.Config) *cobra.Command {
	var analysisType string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify downloaded logos by color, minimalism, or emotion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind := logofy.AnalysisKind(analysisType)
			if !kind.Valid() {
				fmt.Println("Please provide a valid analysis type.")
				return cmd.Help()
			}

			fmt.Printf("Starting analysis on %s criteria...\n", kind)
			out, err := cfg.Analyze(kind)
			if err != nil {
				return err
			}
			fmt.Printf("Analysis completed. Results saved to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&analysisType, "type", "", "analysis type: color, minimalism, or emotion")
	return cmd
}

func newPaletteCmd(cfg *logofy.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Render a sorted color palette image for every downloaded logo",
		RunE: func(_ *cobra.Command, _ []string) error {
			logosDir := cfg.LogosDir
			if logosDir == "" {
				logosDir = "logos"
			}
			entries, err := os.ReadDir(logosDir)
			if err != nil {
				return err
			}

			fmt.Println("Starting color palette creation...")
			built := 0
			for _, ent := range entries {
				if ent.IsDir() {
					continue
				}
				src := filepath.Join(logosDir, ent.Name())
				if _, err := cfg.BuildPalette(src); err != nil {
					slog.Debug("logofy: palette skipped", "path", src, "error", err.Error())
					continue
				}
				built++
			}
			palettesDir := cfg.PalettesDir
			if palettesDir == "" {
				palettesDir = "palettes"
			}
			fmt.Printf("Finished color palette creation: %d palettes written to %s\n", built, palettesDir)
			return nil
		},
	}
}
