package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsg-ethz/snowcap/optimizer"
	"github.com/nsg-ethz/snowcap/pkg/log"
	"github.com/nsg-ethz/snowcap/pkg/metrics"
	"github.com/nsg-ethz/snowcap/private/app/launcher"
	"github.com/nsg-ethz/snowcap/strategy"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an optimize pass as a foreground process with a read-only status/metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, _ := cmd.Flags().GetString("policy")
			softCostName, _ := cmd.Flags().GetString("soft-cost")
			addr, _ := cmd.Flags().GetString("addr")

			app := &launcher.Application{
				ShortName: "serve",
				LogLevel:  v.GetString(flagLogLevel),
				Main: func(ctx context.Context) error {
					return runServe(ctx, v.GetString(flagTopology), v.GetString(flagDelta), policy, softCostName, addr)
				},
			}
			app.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().String("policy", "", "hard policy LTL formula")
	cmd.Flags().String("soft-cost", "shift", "soft cost function: shift|max-shift|max-utilization")
	cmd.Flags().String("addr", ":8080", "status/metrics server listen address")
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}

// statusSnapshot is the JSON body served at /status, matching the
// teacher's service.StatusPages read-only progress-reporting pattern.
type statusSnapshot struct {
	Iterations int     `json:"iterations"`
	BestCost   float64 `json:"best_cost,omitempty"`
	HasBest    bool    `json:"has_best"`
}

func runServe(ctx context.Context, topologyPath, deltaPath, policyText, softCostName, addr string) error {
	in, err := loadInputs(topologyPath, deltaPath, policyText)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	stopper := strategy.NewStopper(ctx)
	strat := strategy.New(in.net, in.commands, in.policy, stopper)
	opt := optimizer.New(strat, softCostFunc(softCostName))

	var mu sync.RWMutex
	var latest statusSnapshot
	snapshot := func() statusSnapshot {
		mu.RLock()
		defer mu.RUnlock()
		return latest
	}

	done := make(chan error, 1)
	go func() {
		defer log.HandlePanic()
		_, runErr := opt.Run(ctx, 0)
		mu.Lock()
		best := opt.Best()
		latest = statusSnapshot{Iterations: opt.Iterations(), HasBest: best != nil}
		if best != nil {
			latest.BestCost = best.Cost
		}
		mu.Unlock()
		done <- runErr
	}()

	r := chi.NewRouter()
	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot())
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: r}
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe()
	}()
	log.Root().Infow("serve listening", "addr", addr)

	select {
	case <-ctx.Done():
		stopper.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-done
		return nil
	case err := <-done:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return err
	case err := <-srvErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
