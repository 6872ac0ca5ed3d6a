package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/app"
	"github.com/repeatio/examweb/internal/config"
	"github.com/repeatio/examweb/internal/importer"
	"github.com/repeatio/examweb/internal/screen"
	"github.com/repeatio/examweb/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPracticeFlags(cmd, &cfg); err != nil {
		return err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logFile, err := config.OpenLogFile(cfg.LogFilePath(dbPath))
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := config.NewLogger(logFile, cfg.LogLevel)
	logger.Info("examweb starting", "db", dbPath, "version", version)

	im := importer.New(logger)
	if cfg.PresetsDir != "" {
		n, err := importer.LoadPresets(ctx, im, st.Banks(), cfg.PresetsDir)
		if err != nil {
			logger.Warn("some presets failed to load", "dir", cfg.PresetsDir, "err", err)
		}
		if n > 0 {
			logger.Info("presets loaded", "dir", cfg.PresetsDir, "banks", n)
		}
	}

	return app.Run(screen.Deps{
		Banks:            st.Banks(),
		Answers:          st.Answers(),
		Wrong:            st.Wrong(),
		Progress:         st.Progress(),
		Importer:         im,
		Logger:           logger,
		AutoAdvanceDelay: cfg.AutoAdvanceDelay,
		UnansweredFirst:  cfg.UnansweredFirst,
	})
}

// applyPracticeFlags lets practice flags override the environment.
func applyPracticeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if f := cmd.Flags().Lookup("auto-advance"); f != nil && f.Changed {
		d, err := cmd.Flags().GetDuration("auto-advance")
		if err != nil {
			return err
		}
		cfg.AutoAdvanceDelay = d
	}
	if f := cmd.Flags().Lookup("unanswered-first"); f != nil && f.Changed {
		cfg.UnansweredFirst, _ = cmd.Flags().GetBool("unanswered-first")
	}
	if f := cmd.Flags().Lookup("presets"); f != nil && f.Changed {
		cfg.PresetsDir, _ = cmd.Flags().GetString("presets")
	}
	return nil
}
