// cmd/recipe-box/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mcp-recipe-box/internal/config"
	"mcp-recipe-box/internal/ingredient"
	"mcp-recipe-box/internal/recipes"
	"mcp-recipe-box/internal/scale"
	"mcp-recipe-box/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath string
	host       string
	port       int
	dbPath     string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	root := &cobra.Command{
		Use:          "recipe-box",
		Short:        "Recipe storage and serving scaler",
		Long:         "Stores recipes and scales their ingredient quantities to any number of servings.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(root, opts)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(serveCmd, opts)

	root.AddCommand(serveCmd)
	root.AddCommand(newScaleCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host address")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port for HTTP transport")
	cmd.Flags().StringVar(&opts.dbPath, "db-path", "", "Database path")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command, opts *serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("db-path") {
		cfg.Database.Path = opts.dbPath
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.NewRecipeBoxServer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("error during shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newScaleCmd() *cobra.Command {
	var (
		from        float64
		to          float64
		noFractions bool
	)

	cmd := &cobra.Command{
		Use:   "scale --from N --to M <ingredient lines...>",
		Short: "Scale free-text ingredient lines between serving counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := ingredient.Parse(strings.Join(args, "\n"))
			list := make([]scale.Ingredient, len(parsed))
			for i, p := range parsed {
				list[i] = p.Ingredient(strconv.Itoa(i + 1))
			}

			scaled, err := scale.Ingredients(list, from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range recipes.DisplayLines(scaled, !noFractions) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "Servings the quantities are written for")
	cmd.Flags().Float64Var(&to, "to", 0, "Servings to scale to")
	cmd.Flags().BoolVar(&noFractions, "no-fractions", false, "Show decimals instead of fraction glyphs")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <quantity> <from> <to>",
		Short: "Convert a quantity between units of the same kind",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[0], err)
			}
			from, err := ingredient.ParseUnit(args[1])
			if err != nil {
				return err
			}
			to, err := ingredient.ParseUnit(args[2])
			if err != nil {
				return err
			}

			converted, err := scale.Convert(quantity, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", scale.Format(scale.Round(converted, to), to), to)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recipe-box version %s\n", server.Version)
		},
	}
}
