package main

import (
	"fmt"

	"github.com/rindex/rindex/checksum"
	"github.com/rindex/rindex/config"
	"github.com/rindex/rindex/index"
	"github.com/rindex/rindex/internal/util"
	"github.com/rindex/rindex/repo"
	"github.com/rindex/rindex/store"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    int
	configPath string
	skipErrors bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "rindex [path]",
		Short: "Print the content index of a repository path",
		Long: `rindex finds the repository containing path (the nearest parent holding a
rindex.toml), walks path without following symlink loops and prints the
index records of every regular file as TOML, one document per standalone
directory. Logs go to stderr.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return run(cmd, flags, target)
		},
	}
	cmd.Flags().IntVarP(&flags.verbose, "verbose", "v", config.WarnVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Tool config override file (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&flags.skipErrors, "skip-errors", false, "Skip entries that cannot be read instead of aborting")
	return cmd
}

// loadToolConfig merges the override file, then explicitly set flags, onto
// the defaults
func loadToolConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if flags.configPath != "" {
		o, err := config.LoadConfigOverrideFile(flags.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		override = o
	}
	if cmd.Flags().Changed("verbose") {
		override.LogLvl = util.Pointer(flags.verbose)
	}
	if cmd.Flags().Changed("skip-errors") {
		override.SkipErrors = util.Pointer(flags.skipErrors)
	}
	cfg := config.NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, flags rootFlags, target string) error {
	cfg, err := loadToolConfig(cmd, flags)
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl, cmd.ErrOrStderr())
	logger := util.GetLogger("main")

	loc, err := repo.LocateSentinel(target, cfg.SentinelName)
	if err != nil {
		logger.Error().Err(err).Str("path", target).Msg("Failed to locate repository")
		return err
	}
	reg := checksum.Default()
	repoCfg, err := repo.LoadConfig(loc.SentinelPath(cfg.SentinelName), reg)
	if err != nil {
		logger.Error().Err(err).Str("root", loc.Root).Msg("Failed to load repository config")
		return err
	}

	session := store.NewSession()
	logger.Info().
		Str("root", loc.Root).
		Str("path", loc.Rel()).
		Str("target", loc.Target()).
		Str("session", session.ID()).
		Msg("Indexing")

	b := index.NewBuilder(session, loc.Root, repoCfg, reg, index.Options{
		SkipErrors: cfg.SkipErrors,
		ChunkSize:  cfg.ChunkSize,
	})
	idx, err := b.Build(loc.Rel())
	if err != nil {
		logger.Error().Err(err).Str("path", loc.Rel()).Msg("Failed to build index")
		return err
	}
	if err := idx.Encode(cmd.OutOrStdout()); err != nil {
		return err
	}
	logger.Info().
		Int("records", len(idx.Records)).
		Int("skipped", len(idx.Skipped)).
		Int("symlinks", len(session.Visited())).
		Msg("Index written")
	return nil
}
