package main

import (
	"github.com/spf13/cobra"

	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/portfolio"
)

var (
	graphMode     string
	graphResearch bool
	graphQuery    string
)

func init() {
	graphCmd.Flags().StringVar(&graphMode, "mode", "topic", "Grouping mode: topic, technology, status, or year")
	graphCmd.Flags().BoolVar(&graphResearch, "research", false, "Only include research projects")
	graphCmd.Flags().StringVarP(&graphQuery, "query", "q", "", "Only include projects matching the query")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the knowledge graph as JSON",
	Long: `Build the knowledge graph for one grouping mode and print its nodes,
links and stats.

Examples:
  garden graph --mode technology
  garden graph --research -q neural`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

type graphOutput struct {
	Mode  knowledge.GroupingMode `json:"mode"`
	Data  knowledge.Data         `json:"data"`
	Stats knowledge.Stats        `json:"stats"`
}

// buildGraph loads projects and builds the graph selected by the shared flags
func buildGraph(cmd *cobra.Command, mode string) (knowledge.GroupingMode, knowledge.Data, error) {
	m, err := knowledge.ParseGroupingMode(mode)
	if err != nil {
		return "", knowledge.Data{}, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", knowledge.Data{}, err
	}
	projects, err := loadProjects(cmd.Context(), cfg, openStore(cfg))
	if err != nil {
		return "", knowledge.Data{}, err
	}
	data := knowledge.Build(portfolio.FilterProjects(projects, graphQuery), knowledge.Options{
		Grouping:     m,
		ResearchOnly: graphResearch,
	})
	return m, data, nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	mode, data, err := buildGraph(cmd, graphMode)
	if err != nil {
		return err
	}
	return outputJSON(cmd.OutOrStdout(), graphOutput{
		Mode:  mode,
		Data:  data,
		Stats: knowledge.Summarize(data),
	})
}
