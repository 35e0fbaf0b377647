package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/viant/codegraph/config"
)

var cfgFile string
var workspaceRoot string
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "Multi-language code-graph indexer",
	Long: `codegraph builds and maintains a cross-file dependency graph for a
workspace: a full analysis over every recognized source file, an
incremental updater that reconciles only what changed on disk, and a
branch-aware watch loop that reacts to commits, branch switches, and
file-system events.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <root>/.codegraph.yaml)")
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "root", ".", "workspace root to analyze")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
}

// newLogger builds the zap.SugaredLogger every subcommand installs on its
// Host, production-levelled unless --verbose raises it to Debug.
func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// initConfig reads the workspace's config file, if any, into viper.
func initConfig() {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		root = workspaceRoot
	}
	workspaceRoot = root

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(root)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".codegraph")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds a config.Config from the documented defaults,
// overlaid with whatever the workspace's config file set (spec §6's
// Config options; absence of a config file is not an error, the
// defaults apply). config.Load does the YAML decode directly so the
// file's shape matches exactly what config.Save (and any
// hand-edited .codegraph.yaml) produces; viper.Unmarshal runs after to
// let flags/env override individual fields.
func loadConfig() *config.Config {
	path := cfgFile
	if path == "" {
		path = filepath.Join(workspaceRoot, ".codegraph.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.Default()
	}
	_ = viper.Unmarshal(cfg)
	return cfg
}
