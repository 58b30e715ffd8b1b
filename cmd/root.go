package cmd

import (
	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
	"github.com/studyloop/studyloop/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "studyloop",
	Short: "A study tutor that remembers what you ask and quizzes you later",
	Long: `Studyloop answers your questions in an interactive session, keeps a
memory of the topics you asked about, and brings each topic back as a
quiz once enough time has passed since it was last tested.

Run with no subcommand to start a learning session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLearn(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var (
	flagConfig string
	flagDB     string
	flagUser   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a YAML config file")
	pf.StringVar(&flagDB, "db", "", "test history database path (sqlite) or DSN (postgres)")
	pf.StringVar(&flagUser, "user", "", "student identifier for memory records")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig layers defaults, the config file, STUDYLOOP_ environment
// variables, and CLI flags, then points the global logger at the
// configured sink.
func loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if flagDB != "" {
		overrides["outcome.dsn"] = flagDB
	}
	if flagUser != "" {
		overrides["tutor.user_id"] = flagUser
	}

	cfg, err := config.Load(flagConfig, overrides)
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	return cfg, nil
}
