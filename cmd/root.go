package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/config"
	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
)

var (
	configPath string
	dataDir    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "rpst",
	Short: "RP Shift Tracker – clock in and out of department shifts",
	Long: `rpst records clock-in and clock-out events per department in a plain
CSV log and reports weekly hours. All data lives in ~/RpShiftTracker/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	err := rootCmd.Execute()
	_ = logging.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/RpShiftTracker/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides data_dir from the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shiftsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(departmentsCmd)
	rootCmd.AddCommand(overlayCmd)
}

// setup loads the config, installs the logger and opens the data directory.
// Invalid settings are reported and replaced by their defaults; a config file
// that cannot be read or parsed stops the command unless --data-dir is given.
func setup(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := config.Load(configPath)

	levelName := cfg.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return errclass.ErrValidation.WithMessage(err.Error())
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		format = logging.FormatText
	}
	log := logging.New(level, format, cmd.ErrOrStderr())
	logging.SetGlobal(log)

	if cfgErr != nil {
		// Without a readable config the data directory is unknown.
		if dataDir == "" && (errors.Is(cfgErr, errclass.ErrParse) || errors.Is(cfgErr, errclass.ErrIO)) {
			return cfgErr
		}
		log.WarnErr("invalid config settings replaced by defaults", cfgErr)
	}

	if dataDir != "" {
		dir, err := config.ExpandHome(dataDir)
		if err != nil {
			return errclass.ErrIO.WithMessage("resolve --data-dir").Wrap(err)
		}
		cfg.DataDir = dir
	}

	state = newApp(cfg, log)
	log.Debug("data directory", map[string]any{"dir": cfg.DataDir})
	return nil
}

// describe renders err for the terminal. Rejected operations print only
// their message.
func describe(err error) string {
	var ce *errclass.Error
	if errors.As(err, &ce) && errors.Is(err, errclass.ErrValidation) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}

// exitCode maps err to the process exit status: 2 for storage failures,
// 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, errclass.ErrIO) {
		return 2
	}
	return 1
}
