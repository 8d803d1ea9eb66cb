package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"careerbot/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "careerbot",
	Short: "Career assistant with job search, recommendations and a resume builder",
	Long: `careerbot answers career questions, searches a job listings corpus and
tracks the jobs it has shown so follow-up questions resolve to the right one.

Example:
  careerbot index
  careerbot search "python developer" --k 5
  careerbot chat --user alice`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/careerbot/config.yaml)")
}

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, path, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		log.Printf("[INFO] using config %s", path)
		return cfg, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
