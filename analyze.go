package logofy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AnalysisKind selects which classification the analysis pass applies.
type AnalysisKind string

const (
	AnalysisColor      AnalysisKind = "color"
	AnalysisMinimalism AnalysisKind = "minimalism"
	AnalysisEmotion    AnalysisKind = "emotion"
)

// Valid reports whether kind is one of the supported analyses.
func (k AnalysisKind) Valid() bool {
	switch k {
	case AnalysisColor, AnalysisMinimalism, AnalysisEmotion:
		return true
	}
	return false
}

// Analyze walks cfg.LogosDir, classifies every decodable image, and writes
// "analysis_<kind>.csv" under cfg.ReportDir. The color analysis additionally
// writes "color_analysis.md" grouping logos by broad color. Undecodable
// files are logged and omitted. Returns the CSV path.
func (cfg *Config) Analyze(kind AnalysisKind) (string, error) {
	cfg.defaults()
	if !kind.Valid() {
		return "", fmt.Errorf("unknown analysis type %q", kind)
	}

	entries, err := os.ReadDir(cfg.LogosDir)
	if err != nil {
		return "", err
	}

	var rows [][]string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		path := filepath.Join(cfg.LogosDir, ent.Name())
		img, _, err := decodeImageFile(path)
		if err != nil {
			slog.Debug("logofy: analysis skipped", "path", path, "error", err.Error())
			continue
		}

		switch kind {
		case AnalysisColor:
			c := DominantColor(img)
			rows = append(rows, []string{ent.Name(), c.String(), ClosestBroadColor(c)})
		case AnalysisMinimalism:
			colors := MainColors(img, paletteColors)
			rows = append(rows, []string{ent.Name(), strconv.FormatBool(ClassifyMinimalism(colors))})
		case AnalysisEmotion:
			colors := MainColors(img, paletteColors)
			rows = append(rows, []string{ent.Name(), ClassifyEmotion(colors)})
		}
	}

	out := filepath.Join(cfg.ReportDir, fmt.Sprintf("analysis_%s.csv", kind))
	if err := writeCSV(out, analysisHeader(kind), rows); err != nil {
		return "", err
	}

	if kind == AnalysisColor {
		mdPath := filepath.Join(cfg.ReportDir, "color_analysis.md")
		if err := writeColorMarkdown(mdPath, rows); err != nil {
			slog.Warn("logofy: cannot write color markdown", "path", mdPath, "error", err.Error())
		}
	}
	return out, nil
}

func analysisHeader(kind AnalysisKind) []string {
	switch kind {
	case AnalysisColor:
		return []string{"Logo", "Main_Color_RGB", "Color_Group"}
	case AnalysisMinimalism:
		return []string{"Logo", "Minimalist?"}
	default:
		return []string{"Logo", "Emotion"}
	}
}

// writeColorMarkdown groups the color-analysis rows (Logo, RGB, Group) under
// one heading per broad color, in palette order.
func writeColorMarkdown(path string, rows [][]string) error {
	groups := make(map[string][]string, len(BroadColors))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		groups[row[2]] = append(groups[row[2]], row[0])
	}

	var sb strings.Builder
	sb.WriteString("# Logo Main Color Analysis\n\n")
	sb.WriteString("This document groups logos by their closest broad color category.\n\n")

	for _, bc := range BroadColors {
		fmt.Fprintf(&sb, "## %s Logos\n\n", bc.Name)
		logos := groups[bc.Name]
		if len(logos) == 0 {
			sb.WriteString("_No logos in this category._\n")
		} else {
			for _, logo := range logos {
				fmt.Fprintf(&sb, "- **%s**\n", logo)
			}
		}
		sb.WriteString("\n---\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
