package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/adminapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/app"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/export"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/shopapi"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type rootOptions struct {
	configFile string
	logLevel   string
	workdir    string
}

func (o *rootOptions) load() (*config.AppConfig, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}
	if o.workdir != "" {
		cfg.System.Workdir = o.workdir
	}
	return cfg, nil
}

// start loads the config and initializes the application; callers Release it
func (o *rootOptions) start(ctx context.Context) (*app.Application, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(ctx); err != nil {
		application.Release()
		return nil, err
	}
	return application, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "yammi",
		Short:         "Yammi Yami diapers storefront and back-office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.workdir, "workdir", "", "override system.workdir")

	root.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newCacheCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront and admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := opts.start(ctx)
			if err != nil {
				return err
			}
			defer application.Release()

			srv := webserver.Init(application.Config(), application)
			adminapi.Init()
			shopapi.Init()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Listen(ctx)
			})
			g.Go(func() error {
				application.StartBackgroundJobs(ctx)
				<-ctx.Done()
				return nil
			})
			err = g.Wait()
			zap.L().Info("server stopped", zap.String("namespace", "main"))
			return err
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the cache and, for the database backend, empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Release()
			if err := application.Reseed(cmd.Context(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded (backend=%s, force=%t)\n", application.Backend(), force)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing collections with seed data")
	return cmd
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the key-value cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List cache keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Release()
			keys, err := application.Cache().Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	})
	return cacheCmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "export products|orders",
		Short:     "Write a collection as CSV to stdout",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"products", "orders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Release()
			ctx := cmd.Context()
			repos := application.Repos()
			switch args[0] {
			case "products":
				rows, _, err := repos.Products.List(ctx, repository.Filter{Sort: "id"})
				if err != nil {
					return err
				}
				return export.ProductsCSV(cmd.OutOrStdout(), rows)
			case "orders":
				rows, _, err := repos.Orders.List(ctx, repository.Filter{Sort: "date"})
				if err != nil {
					return err
				}
				return export.OrdersCSV(cmd.OutOrStdout(), rows)
			}
			return errors.Errorf("unknown collection: %s", args[0])
		},
	}
}
