package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lifelevel/internal/metrics"
	"lifelevel/internal/scheduler"
	"lifelevel/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event stream and reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Reminders.Enabled {
				if err := scheduler.ValidateSpec(a.cfg.Reminders.Spec); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}
			m.SetLevels(svc.State())

			events, unsubscribe := svc.Subscribe(64)
			defer unsubscribe()

			srv := server.New(server.Config{
				Addr:     a.cfg.Server.Addr,
				CORS:     a.cfg.Server.CORS,
				Debug:    a.cfg.Server.Debug,
				Gatherer: reg,
			}, svc, m, a.logger)
			sched := scheduler.New(scheduler.Config{
				Enabled: a.cfg.Reminders.Enabled,
				Spec:    a.cfg.Reminders.Spec,
			}, svc, a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			g.Go(func() error {
				if err := sched.Start(gctx); err != nil {
					return err
				}
				<-gctx.Done()
				sched.Stop()
				return nil
			})
			g.Go(func() error {
				m.Run(gctx, events)
				return nil
			})

			err = g.Wait()
			if err != nil && err != context.Canceled {
				return err
			}
			a.logger.Info("shut down")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}
		return nil
	}
	return cmd
}
