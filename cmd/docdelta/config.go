package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docdelta/internal/config"
	"docdelta/internal/errors"
	"docdelta/internal/grading"
	"docdelta/internal/paths"
)

var (
	configFormat string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docdelta configuration",
	Long:  "View and manage docdelta configuration stored in .docdelta/config.json",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration and grading weights",
	Long: `Write .docdelta/config.json with default values and .docdelta/grading.toml
with the default role weights, and point grading.file at it.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults and DOCDELTA_* environment
overrides are applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing files")
	configShowCmd.Flags().StringVar(&configFormat, "format", "json", "Output format (json, yaml)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath string                 `json:"configPath" yaml:"configPath"`
	FileExists bool                   `json:"fileExists" yaml:"fileExists"`
	Config     map[string]interface{} `json:"config" yaml:"config"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(commandContext(cmd))
	if err != nil {
		return err
	}

	configPath := paths.GetConfigPath(repoRoot)
	weightsPath := filepath.Join(paths.GetDataDir(repoRoot), grading.WeightsFileName)

	if !configForce {
		for _, p := range []string{configPath, weightsPath} {
			if _, err := os.Stat(p); err == nil {
				return errors.New(errors.UsageError, p+" already exists", nil, []errors.FixAction{{
					Type:        errors.RunCommand,
					Command:     "docdelta config init --force",
					Description: "Overwrite the existing configuration",
				}})
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Grading.File = filepath.Join(paths.DataDirName, grading.WeightsFileName)

	if err := cfg.Save(repoRoot); err != nil {
		return errors.New(errors.InternalError, "Failed to write configuration", err, nil)
	}
	if err := grading.CreateExampleWeightsFile(weightsPath); err != nil {
		return errors.New(errors.InternalError, "Failed to write grading weights", err, nil)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", configPath)
	fmt.Fprintf(out, "Wrote %s\n", weightsPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(commandContext(cmd))
	if err != nil {
		return err
	}

	configPath := paths.GetConfigPath(repoRoot)
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "Failed to load configuration", err, nil).
			WithDetails(map[string]string{"path": configPath})
	}

	// Convert config to map so yaml output keeps the json field names
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		return err
	}

	_, statErr := os.Stat(configPath)
	resp := &ConfigShowResponse{
		ConfigPath: configPath,
		FileExists: statErr == nil,
		Config:     asMap,
	}
	return writeOutput(cmd, resp, configFormat)
}
