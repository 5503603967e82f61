package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lootledger/internal/bootstrap"
	metricsdto "lootledger/internal/modules/metrics/dto"
	sessiondto "lootledger/internal/modules/session/dto"
	valuationdto "lootledger/internal/modules/valuation/dto"
	"lootledger/internal/platform/config"
	"lootledger/internal/platform/money"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globals struct {
	dataPath string
	identity string
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "lootledger",
		Short:         "Play-session loot and gold ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.dataPath, "data", defaultDataPath(), "data directory")
	root.PersistentFlags().StringVar(&g.identity, "identity", os.Getenv("LOOTLEDGER_IDENTITY"), "character identity as <name>-<realm>")

	root.AddCommand(newSessionCmd(g))
	root.AddCommand(newSignalCmd(g))
	root.AddCommand(newItemCmd(g))
	root.AddCommand(newPriceCmd(g))
	root.AddCommand(newPluginCmd(g))
	root.AddCommand(newMetricsCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newReindexCmd(g))
	return root
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lootledger"
	}
	return filepath.Join(home, ".lootledger")
}

// withApp builds the application graph for one command and tears it down
// afterwards.
func withApp(g *globals, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.New(g.dataPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

func (g *globals) requireIdentity() error {
	if strings.TrimSpace(g.identity) == "" {
		return fmt.Errorf("--identity is required")
	}
	return nil
}

// identityCmd wraps a lifecycle call that only needs the current identity.
func identityCmd(g *globals, use, short, verb string, call func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := g.requireIdentity(); err != nil {
				return err
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := call(ctx, app, g.identity)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s status=%s duration=%s net_worth=%s\n",
					verb, out.ID, out.Status, formatSeconds(out.DurationSec), money.Format(out.NetWorth))
				return nil
			})
		},
	}
}

func newSessionCmd(g *globals) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Play session lifecycle"}

	session.AddCommand(identityCmd(g, "start", "Start a session for the identity", "started",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Start(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "pause", "Pause the active session", "paused",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Pause(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "resume", "Resume the active session", "resumed",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Resume(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "stop", "Stop the active session", "stopped",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Stop(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "connect", "Record a login for the active session", "connected",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Connect(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "disconnect", "Record a logout for the active session", "disconnected",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Disconnect(ctx, identity)
		}))
	session.AddCommand(identityCmd(g, "active", "Show the active session", "active",
		func(ctx context.Context, app *bootstrap.App, identity string) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Active(ctx, identity)
		}))

	session.AddCommand(&cobra.Command{
		Use:   "archive <session-id>",
		Short: "Move a stopped session to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				token, err := app.SessionCLI.Archive(ctx, args[0])
				if err != nil {
					return err
				}
				printUndo(cmd.OutOrStdout(), "archived "+args[0], token)
				return nil
			})
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stopped session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				token, err := app.SessionCLI.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				printUndo(cmd.OutOrStdout(), "deleted "+args[0], token)
				return nil
			})
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "merge <session-id> <session-id>...",
		Short: "Merge stopped sessions of one identity",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Merge(ctx, args)
				if err != nil {
					return err
				}
				printUndo(cmd.OutOrStdout(), "merged into "+out.Session.ID, out.Undo)
				return nil
			})
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "undo <token>",
		Short: "Revert an archive, delete or merge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Undo(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "undid %s restored=%s", out.Kind, strings.Join(out.Restored, ","))
				if len(out.Discarded) > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " discarded=%s", strings.Join(out.Discarded, ","))
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	})

	var includeArchived, allIdentities bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity := g.identity
			if allIdentities {
				identity = ""
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.SessionCLI.List(ctx, identity, includeArchived)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%s\n",
						s.ID, s.Identity, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Status,
						formatSeconds(s.DurationSec), money.Format(s.NetWorth))
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&includeArchived, "archived", false, "include archived sessions")
	list.Flags().BoolVar(&allIdentities, "all", false, "list every identity")
	session.AddCommand(list)

	session.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show session totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.SessionCLI.Show(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "id: %s\nidentity: %s\nstatus: %s\nstarted: %s\nduration: %s\n",
					s.ID, s.Identity, s.Status, s.StartedAt.Format(time.RFC3339), formatSeconds(s.DurationSec))
				_, _ = fmt.Fprintf(w, "cash: %s\ninventory: %s\nnet_worth: %s\nincome: %s\nexpenses: %s\nrealized: %s\n",
					money.Format(s.Cash), money.Format(s.Inventory), money.Format(s.NetWorth),
					money.Format(s.Income), money.Format(s.Expenses), money.Format(s.Realized))
				if len(s.MergedFrom) > 0 {
					_, _ = fmt.Fprintf(w, "merged_from: %s\n", strings.Join(s.MergedFrom, ","))
				}
				return nil
			})
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "report <session-id>",
		Short: "Write the markdown report of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Report(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report written: %s\n", out.Path)
				return nil
			})
		},
	})
	return session
}

func newSignalCmd(g *globals) *cobra.Command {
	signalCmd := &cobra.Command{Use: "signal", Short: "Feed game events into the active session"}

	signalCmd.AddCommand(&cobra.Command{
		Use:   "loot <item-id> <count>",
		Short: "Record looted items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args, "item-id", "count")
			if err != nil {
				return err
			}
			return applySignal(cmd, g, func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error) {
				return app.SessionCLI.Loot(ctx, g.identity, nums[0], nums[1])
			})
		},
	})
	signalCmd.AddCommand(&cobra.Command{
		Use:   "sell <item-id> <count> <proceeds>",
		Short: "Record a vendor sale",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args[:2], "item-id", "count")
			if err != nil {
				return err
			}
			proceeds, err := money.Parse(args[2])
			if err != nil {
				return fmt.Errorf("proceeds: %w", err)
			}
			return applySignal(cmd, g, func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error) {
				return app.SessionCLI.Sell(ctx, g.identity, nums[0], nums[1], proceeds)
			})
		},
	})
	var reason string
	remove := &cobra.Command{
		Use:   "remove <item-id> <count>",
		Short: "Record items leaving the bags without a sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args, "item-id", "count")
			if err != nil {
				return err
			}
			return applySignal(cmd, g, func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error) {
				return app.SessionCLI.Remove(ctx, g.identity, nums[0], nums[1], reason)
			})
		},
	}
	remove.Flags().StringVar(&reason, "reason", "", "why the items left")
	signalCmd.AddCommand(remove)

	signalCmd.AddCommand(&cobra.Command{
		Use:   "money <amount> <source>",
		Short: "Record a currency change, negative for spending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[0])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			return applySignal(cmd, g, func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error) {
				return app.SessionCLI.Money(ctx, g.identity, amount, args[1])
			})
		},
	})
	signalCmd.AddCommand(&cobra.Command{
		Use:   "counter <name> <value> <max>",
		Short: "Record a cumulative counter reading",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args[1:], "value", "max")
			if err != nil {
				return err
			}
			return applySignal(cmd, g, func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error) {
				return app.SessionCLI.Counter(ctx, g.identity, args[0], nums[0], nums[1])
			})
		},
	})
	return signalCmd
}

func applySignal(cmd *cobra.Command, g *globals, call func(ctx context.Context, app *bootstrap.App) (sessiondto.SignalOutput, error)) error {
	if err := g.requireIdentity(); err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
		out, err := call(ctx, app)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "%s session=%s", out.Kind, out.SessionID)
		if out.Bucket != "" {
			_, _ = fmt.Fprintf(w, " bucket=%s value=%s", out.Bucket, money.Format(out.ValuePerUnit))
		}
		if out.Reversed != 0 {
			_, _ = fmt.Fprintf(w, " reversed=%s", money.Format(out.Reversed))
		}
		if out.CounterDelta != 0 {
			_, _ = fmt.Fprintf(w, " delta=%d", out.CounterDelta)
		}
		_, _ = fmt.Fprintf(w, " net_worth=%s\n", money.Format(out.NetWorth))
		return nil
	})
}

func newItemCmd(g *globals) *cobra.Command {
	item := &cobra.Command{Use: "item", Short: "Item catalog"}

	var input valuationdto.ItemInput
	var vendor string
	set := &cobra.Command{
		Use:   "set <item-id> --name <name>",
		Short: "Add or replace a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("item-id: %w", err)
			}
			input.ItemID = itemID
			if vendor != "" {
				if input.VendorPrice, err = money.Parse(vendor); err != nil {
					return fmt.Errorf("vendor: %w", err)
				}
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ValuationCLI.PutItem(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "item %d %s quality=%s bucket=%s vendor=%s\n",
					out.ItemID, out.Name, out.Quality, out.Bucket, money.Format(out.VendorPrice))
				return nil
			})
		},
	}
	set.Flags().StringVar(&input.Name, "name", "", "item name")
	set.Flags().IntVar(&input.Quality, "quality", 1, "quality 0 poor .. 5 legendary")
	set.Flags().IntVar(&input.Class, "class", 0, "item class id")
	set.Flags().IntVar(&input.Subclass, "subclass", 0, "item subclass id")
	set.Flags().StringVar(&vendor, "vendor", "", "vendor price, e.g. 1g20s")
	item.AddCommand(set)

	item.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.ValuationCLI.ListItems(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no items")
					return nil
				}
				for _, it := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n",
						it.ItemID, it.Name, it.Quality, it.Bucket, money.Format(it.VendorPrice))
				}
				return nil
			})
		},
	})
	item.AddCommand(&cobra.Command{
		Use:   "appraise <item-id>",
		Short: "Show how an item would be valued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("item-id: %w", err)
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				a, err := app.ValuationCLI.Appraise(ctx, itemID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d %s bucket=%s vendor=%s market=%s value=%s\n",
					a.ItemID, a.Name, a.Bucket, money.Format(a.VendorPrice), money.Format(a.MarketPrice), money.Format(a.ValuePerUnit))
				return nil
			})
		},
	})
	return item
}

func newPriceCmd(g *globals) *cobra.Command {
	price := &cobra.Command{Use: "price", Short: "Market price overrides"}
	price.AddCommand(&cobra.Command{
		Use:   "set <item-id> <price>",
		Short: "Set a market price override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("item-id: %w", err)
			}
			copper, err := money.Parse(args[1])
			if err != nil {
				return fmt.Errorf("price: %w", err)
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.ValuationCLI.SetPrice(ctx, itemID, copper); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "price %d = %s\n", itemID, money.Format(copper))
				return nil
			})
		},
	})
	price.AddCommand(&cobra.Command{
		Use:   "clear <item-id>",
		Short: "Remove a market price override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("item-id: %w", err)
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.ValuationCLI.ClearPrice(ctx, itemID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "price %d cleared\n", itemID)
				return nil
			})
		},
	})
	return price
}

func newPluginCmd(g *globals) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Price source plugins"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				plugins, err := app.PricingCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				for _, p := range plugins {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\t%s\n", p.Name, p.Version, p.Enabled, strings.Join(p.Capabilities, ","))
				}
				return nil
			})
		},
	})
	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check plugin binaries and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.PricingCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				failed := false
				for _, r := range results {
					marker := "OK"
					if !r.ChecksumValid || !r.BinaryReachable || !r.LifecycleOK {
						marker = "FAIL"
						failed = true
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s checksum=%t binary=%t lifecycle=%t %s\n",
						marker, r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK, r.Error)
				}
				if failed {
					return fmt.Errorf("plugin doctor found failing checks")
				}
				return nil
			})
		},
	})
	plugin.AddCommand(&cobra.Command{
		Use:   "quote <plugin> <item-id>",
		Short: "Ask a plugin for a market price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("item-id: %w", err)
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.PricingCLI.Quote(ctx, args[0], itemID)
				if err != nil {
					return err
				}
				if !out.Found {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s has no price for %d\n", out.PluginName, out.ItemID)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d = %s\n", out.PluginName, out.ItemID, money.Format(out.Copper))
				return nil
			})
		},
	})
	return plugin
}

func newMetricsCmd(g *globals) *cobra.Command {
	var sessionID string
	var asJSON bool
	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Show totals and hourly rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				if err := g.requireIdentity(); err != nil {
					return err
				}
			}
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				var out metricsdto.Metrics
				var err error
				if sessionID != "" {
					out, err = app.MetricsCLI.Session(ctx, sessionID)
				} else {
					out, err = app.MetricsCLI.Active(ctx, g.identity)
				}
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				}
				printMetrics(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	metrics.Flags().StringVar(&sessionID, "session", "", "session id instead of the active session")
	metrics.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return metrics
}

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve live metrics over websocket on loopback",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				srv := &http.Server{
					Addr:              addr,
					Handler:           app.Feed.Routes(),
					ReadHeaderTimeout: 5 * time.Second,
					BaseContext:       func(net.Listener) context.Context { return ctx },
				}
				errCh := make(chan error, 1)
				go func() { errCh <- srv.ListenAndServe() }()
				app.Logger.Info("metrics feed listening", "addr", addr)

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	serve.Flags().StringVar(&addr, "addr", "127.0.0.1:7788", "listen address")
	return serve
}

func newWatchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the terminal dashboard for the identity",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := g.requireIdentity(); err != nil {
				return err
			}
			cfg, err := config.New(g.dataPath)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(context.Background(), cfg, io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(g.identity, app)
		},
	}
}

func newReindexCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the session history index from stored sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Reindex(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex complete")
				return nil
			})
		},
	}
}

func printUndo(w io.Writer, what string, token sessiondto.UndoToken) {
	_, _ = fmt.Fprintf(w, "%s\nundo: lootledger session undo %s (until %s)\n", what, token.Token, token.ExpiresAt.Local().Format(time.Kitchen))
}

func printMetrics(w io.Writer, m metricsdto.Metrics) {
	_, _ = fmt.Fprintf(w, "%s %s %s duration=%s\n", m.Identity, m.SessionID, m.Status, formatSeconds(m.DurationSec))
	for _, c := range m.Categories {
		_, _ = fmt.Fprintf(w, "  %-13s %12s  %10s/h\n", c.Name, money.Format(c.Total), money.Format(c.Rate))
	}
	printLines(w, "buckets", m.Buckets, 0)
	printLines(w, "top items", m.TopItems.Lines, m.TopItems.More)
	printLines(w, "top income", m.TopIncome.Lines, m.TopIncome.More)
	printLines(w, "top expenses", m.TopExpenses.Lines, m.TopExpenses.More)
	if len(m.Counters) > 0 {
		_, _ = fmt.Fprintln(w, "counters")
		for _, c := range m.Counters {
			_, _ = fmt.Fprintf(w, "  %-13s %d  %d/h\n", c.Name, c.Total, c.Rate)
		}
	}
}

func printLines(w io.Writer, title string, lines []metricsdto.Line, more int) {
	if len(lines) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, title)
	for _, l := range lines {
		_, _ = fmt.Fprintf(w, "  %-24s %12s\n", l.Label, money.Format(l.Amount))
	}
	if more > 0 {
		_, _ = fmt.Fprintf(w, "  +%d more\n", more)
	}
}

func parseInts(args []string, names ...string) ([]int64, error) {
	out := make([]int64, len(names))
	for i, name := range names {
		v, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func formatSeconds(sec int64) string {
	return (time.Duration(sec) * time.Second).String()
}
