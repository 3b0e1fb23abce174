package root

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lifelevel/internal/config"
	"lifelevel/internal/logging"
	"lifelevel/internal/ui"
)

const Version = "0.1.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "ll",
		Short:         "LifeLevel: level up the areas of your life",
		Long:          "LifeLevel is a local-first CLI, TUI and HTTP service that turns personal growth activities into RPG progression.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default ./lifelevel.yaml or ~/.config/lifelevel/lifelevel.yaml)")
	pf.String("db", "", "SQLite database path (default ~/.lifelevel.db)")
	pf.Bool("ephemeral", false, "Keep state in memory only")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")
	_ = a.v.BindPFlag("db.path", pf.Lookup("db"))
	_ = a.v.BindPFlag("db.ephemeral", pf.Lookup("ephemeral"))
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newStatusCmd(a),
		newAreasCmd(a),
		newActivitiesCmd(a),
		newDoCmd(a),
		newHistoryCmd(a),
		newQuestsCmd(a),
		newSkillsCmd(a),
		newAchievementsCmd(a),
		newProfileCmd(a),
		newAvatarCmd(a),
		newPlanCmd(a),
		newRemindCmd(a),
		newBoardCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
