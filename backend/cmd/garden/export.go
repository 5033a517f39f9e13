package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"digital-garden/backend/internal/content"
	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/registry"
)

var (
	exportDir          string
	exportAttestations bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "dist/data", "Directory to write the data files to")
	exportCmd.Flags().BoolVar(&exportAttestations, "attestations", false, "Also look up package attestations and write attestations.json")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write static data files for hosting without the server",
	Long: `Write config.json, projects.json, papers.json and sponsorships.json with
defaults applied, plus one graph file per grouping mode under graph/.

Examples:
  garden export --out dist/data
  garden export --github --attestations`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

type exportOutput struct {
	Output string   `json:"output"`
	Files  []string `json:"files"`
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := openStore(cfg)

	pc, err := store.Config()
	if err != nil {
		return err
	}
	if pc.GitHubUsername == "" {
		pc.GitHubUsername = cfg.GitHubUsername
	}
	projects, err := loadProjects(cmd.Context(), cfg, store)
	if err != nil {
		return err
	}
	papers, err := store.Papers()
	if err != nil {
		return err
	}
	tiers, err := store.Sponsorships(cfg.SponsorsAccount)
	if err != nil {
		return err
	}

	files := map[string]interface{}{
		content.ConfigFile:       pc,
		content.ProjectsFile:     projects,
		content.PapersFile:       papers,
		content.SponsorshipsFile: map[string]interface{}{"tiers": tiers},
	}
	for _, mode := range knowledge.GroupingModes {
		data := knowledge.Build(projects, knowledge.Options{Grouping: mode})
		files[filepath.Join("graph", string(mode)+".json")] = graphOutput{
			Mode:  mode,
			Data:  data,
			Stats: knowledge.Summarize(data),
		}
	}

	if exportAttestations {
		m, err := store.Manifest()
		if err != nil {
			return err
		}
		hc := &http.Client{Timeout: 30 * time.Second}
		svc := registry.NewService(
			registry.NewNPMClient(cfg.NPMRegistryURL, cfg.NPMAPIURL, hc),
			registry.NewPyPIClient(cfg.PyPIURL, hc),
		)
		records, err := svc.Attestations(cmd.Context(), m.Packages)
		if err != nil {
			return err
		}
		files["attestations.json"] = map[string]interface{}{
			"attestations": records,
			"summary":      registry.Summarize(records),
		}
	}

	out := exportOutput{Output: exportDir}
	for _, name := range sortedKeys(files) {
		if err := writeJSONFile(filepath.Join(exportDir, name), files[name]); err != nil {
			return err
		}
		out.Files = append(out.Files, name)
	}
	return outputJSON(cmd.OutOrStdout(), out)
}
