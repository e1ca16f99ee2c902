// Package cmd defines the command-line interface for folio.
package cmd

import (
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("username", "u", "", "Account name on the repository host")
	rootCmd.PersistentFlags().String("judge-username", "", "Account name on the coding judge")
	rootCmd.PersistentFlags().String("repo-host", contract.DefaultRepoHost, "Base URL of the repository host API")
	rootCmd.PersistentFlags().String("api-base", contract.DefaultAPIBase, "Base URL of the folio backend (views and judge endpoints)")
	rootCmd.PersistentFlags().String("activity-window", contract.ActivityWindow.String(), "Freshness window of the activity tracker")
	rootCmd.PersistentFlags().String("views-window", contract.ViewsWindow.String(), "Freshness window of the views tracker")
	rootCmd.PersistentFlags().String("judge-window", contract.JudgeWindow.String(), "Freshness window of the judge tracker")
	rootCmd.PersistentFlags().String("http-timeout", "0", "Per-request timeout for upstream calls (0 = none)")
	rootCmd.PersistentFlags().String("trackers", "", "Comma-separated trackers to enable: activity,views,judge (default all)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.MemoryBackend), "Session cache backend: memory or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for sqlite/mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace or debug or info or warn or error or disabled")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the backend listens on")
	serveCmd.Flags().String("counter-url", "", "Base URL of the page-view counter")
	serveCmd.Flags().String("counter-token", "", "Bearer token for the counter (prefer FOLIO_COUNTER_TOKEN)")
	serveCmd.Flags().String("judge-upstream", contract.DefaultJudgeUpstream, "Base URL of the coding-judge stats API")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target schema version (-1 = latest, 0 = roll back everything)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
