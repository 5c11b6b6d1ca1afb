package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/tallyline/internal/config"
	"github.com/vanshika/tallyline/internal/dataset"
	"github.com/vanshika/tallyline/internal/domain"
	"github.com/vanshika/tallyline/internal/graph"
	"github.com/vanshika/tallyline/internal/logging"
	"github.com/vanshika/tallyline/internal/repository"
	"github.com/vanshika/tallyline/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	ordersPath   string
	usersPath    string
	outputPath   string
	workers      int
	persist      bool
	requireEmail bool
}

type app struct {
	cfg       config.Config
	logger    *slog.Logger
	evaluator *service.BatchEvaluator
	closeFn   func()
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "evaluate",
		Short:        "Compute order totals and user views from dataset files",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.outputPath, "output", "", "write results to this file (.json or .yaml) instead of stdout")
	pf.IntVar(&opts.workers, "workers", 0, "number of concurrent workers (defaults to EVAL_WORKERS)")
	pf.BoolVar(&opts.persist, "persist", false, "store results in the graph database (requires GRAPH_URI)")
	pf.BoolVar(&opts.requireEmail, "require-email", false, "fail users without an email instead of emitting an empty one")

	totals := &cobra.Command{
		Use:   "totals",
		Short: "Total every order in a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := evaluateOrders(ctx, a, opts.ordersPath)
				return finish(cmd.OutOrStdout(), opts.outputPath, rep, err)
			})
		},
	}
	totals.Flags().StringVar(&opts.ordersPath, "orders", "", "path to the orders dataset")
	_ = totals.MarkFlagRequired("orders")

	users := &cobra.Command{
		Use:   "users",
		Short: "Project name and email of every user in a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := evaluateUsers(ctx, a, opts.usersPath)
				return finish(cmd.OutOrStdout(), opts.outputPath, rep, err)
			})
		},
	}
	users.Flags().StringVar(&opts.usersPath, "users", "", "path to the users dataset")
	_ = users.MarkFlagRequired("users")

	all := &cobra.Command{
		Use:   "all",
		Short: "Evaluate an orders and a users dataset concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					orderRep, userRep report
					orderErr, userErr error
					g                 errgroup.Group
				)
				g.Go(func() error {
					orderRep, orderErr = evaluateOrders(ctx, a, opts.ordersPath)
					return nil
				})
				g.Go(func() error {
					userRep, userErr = evaluateUsers(ctx, a, opts.usersPath)
					return nil
				})
				_ = g.Wait()

				combined := report{Totals: orderRep.Totals, Users: userRep.Users}
				return finish(cmd.OutOrStdout(), opts.outputPath, combined, errors.Join(orderErr, userErr))
			})
		},
	}
	all.Flags().StringVar(&opts.ordersPath, "orders", "", "path to the orders dataset")
	all.Flags().StringVar(&opts.usersPath, "users", "", "path to the users dataset")
	_ = all.MarkFlagRequired("orders")
	_ = all.MarkFlagRequired("users")

	root.AddCommand(totals, users, all)
	return root
}

func withApp(cmd *cobra.Command, opts options, fn func(context.Context, *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.workers > 0 {
		cfg.Eval.Workers = opts.workers
	}
	cfg.Eval.Persist = cfg.Eval.Persist || opts.persist
	cfg.Eval.RequireEmail = cfg.Eval.RequireEmail || opts.requireEmail

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging).With("component", "evaluate")

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("setup failed", "error", err)
		return err
	}
	defer a.closeFn()

	start := time.Now()
	err = fn(cmd.Context(), a)
	logger.Info("evaluation finished", "duration", time.Since(start).String(), "failed", err != nil)
	return err
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, closeFn: func() {}}

	var store service.ResultStore
	if cfg.Eval.Persist {
		client, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		a.closeFn = func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
		store = repository.New(client)
	}

	svc := service.NewEvaluationService(store, service.Options{
		RequireEmail: cfg.Eval.RequireEmail,
		Logger:       logger,
	})
	a.evaluator = service.NewBatchEvaluator(svc, cfg.Eval.Workers)
	return a, nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required with --persist: %w", graph.ErrMissingURI)
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}

type orderTotalRow struct {
	OrderID    string `json:"orderId" yaml:"orderId"`
	CustomerID string `json:"customerId,omitempty" yaml:"customerId,omitempty"`
	Total      string `json:"total" yaml:"total"`
	ItemCount  int    `json:"itemCount" yaml:"itemCount"`
}

type userViewRow struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	domain.UserView `yaml:",inline"`
}

type report struct {
	Totals []orderTotalRow `json:"totals,omitempty" yaml:"totals,omitempty"`
	Users  []userViewRow   `json:"users,omitempty" yaml:"users,omitempty"`
}

func evaluateOrders(ctx context.Context, a *app, path string) (report, error) {
	var orders []service.OrderInput
	if err := dataset.ReadFile(path, &orders); err != nil {
		return report{}, err
	}
	a.logger.Info("evaluating orders", "count", len(orders), "workers", a.cfg.Eval.Workers)

	results, err := a.evaluator.EvaluateOrders(ctx, orders)
	failed, partial := failedEntries(err)
	if !partial {
		return report{}, err
	}
	rows := make([]orderTotalRow, 0, len(results))
	for i, res := range results {
		if failed[i] {
			continue
		}
		rows = append(rows, orderTotalRow{
			OrderID:    res.OrderID,
			CustomerID: res.CustomerID,
			Total:      res.Total.String(),
			ItemCount:  res.ItemCount,
		})
	}
	return report{Totals: rows}, err
}

func evaluateUsers(ctx context.Context, a *app, path string) (report, error) {
	var users []service.UserInput
	if err := dataset.ReadFile(path, &users); err != nil {
		return report{}, err
	}
	a.logger.Info("evaluating users", "count", len(users), "workers", a.cfg.Eval.Workers)

	views, err := a.evaluator.EvaluateUsers(ctx, users)
	failed, partial := failedEntries(err)
	if !partial {
		return report{}, err
	}
	rows := make([]userViewRow, 0, len(views))
	for i, view := range views {
		if failed[i] {
			continue
		}
		rows = append(rows, userViewRow{ID: users[i].ID, UserView: view})
	}
	return report{Users: rows}, err
}

// failedEntries returns the indices of entries that failed. partial is false
// when err aborted the whole run rather than individual entries.
func failedEntries(err error) (failed map[int]bool, partial bool) {
	failed = map[int]bool{}
	if err == nil {
		return failed, true
	}
	var taskErr *service.TaskError
	if !errors.As(err, &taskErr) {
		return failed, false
	}
	for _, e := range taskErr.Errors {
		var itemErr *service.ItemError
		if errors.As(e, &itemErr) {
			failed[itemErr.Index] = true
		}
	}
	return failed, true
}

// finish writes whatever was computed, then reports the evaluation error.
func finish(stdout io.Writer, outputPath string, r report, evalErr error) error {
	var writeErr error
	if outputPath != "" {
		writeErr = dataset.WriteFile(outputPath, r)
	} else {
		writeErr = dataset.Encode(stdout, false, r)
	}
	if evalErr != nil {
		return evalErr
	}
	return writeErr
}
