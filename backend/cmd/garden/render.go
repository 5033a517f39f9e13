package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital-garden/backend/internal/render"
	"digital-garden/backend/internal/scene"
)

var (
	renderFormat    string
	renderOutput    string
	renderHighlight string
	renderWidth     int
)

func init() {
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "Output format: html or svg")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderHighlight, "highlight", "", "Node id to focus in the SVG")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Window width used to size the 3D view")
	renderCmd.Flags().StringVar(&graphMode, "mode", "topic", "Grouping mode: topic, technology, status, or year")
	renderCmd.Flags().BoolVar(&graphResearch, "research", false, "Only include research projects")
	renderCmd.Flags().StringVarP(&graphQuery, "query", "q", "", "Only include projects matching the query")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the knowledge graph as an HTML page or SVG",
	Long: `Render the knowledge graph.

html writes the interactive 3D page; svg writes the static fallback drawing.

Examples:
  garden render --output graph.html
  garden render --format svg --mode year --highlight repo_42 -o graph.svg`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	mode, data, err := buildGraph(cmd, graphMode)
	if err != nil {
		return err
	}

	var out string
	switch renderFormat {
	case "html":
		out, err = render.HTML(data, render.HTMLOptions{Mode: mode, WindowWidth: renderWidth})
	case "svg":
		sc := scene.New(data, scene.Options{WindowWidth: renderWidth, SkipLayout: true})
		if renderHighlight != "" && !sc.Focus(renderHighlight) {
			return fmt.Errorf("node not found: %s", renderHighlight)
		}
		out, err = render.SVG(sc, render.DefaultSVGOptions())
	default:
		return fmt.Errorf("unknown format %q: must be html or svg", renderFormat)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", renderFormat, err)
	}

	if err := writeOutput(cmd.OutOrStdout(), renderOutput, []byte(out)); err != nil {
		return err
	}
	if renderOutput != "" {
		return outputJSON(cmd.OutOrStdout(), map[string]string{"output": renderOutput})
	}
	return nil
}
