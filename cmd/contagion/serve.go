package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/internal/metrics"
	"github.com/GoSim-25-26J-441/contagion-core/internal/simd"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
)

type serveOptions struct {
	configPath      string
	grpcAddr        string
	httpAddr        string
	shutdownTimeout time.Duration
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sweep daemon (gRPC and HTTP APIs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.configPath != "" {
				cfg, err := config.LoadConfig(opts.configPath)
				if err != nil {
					return err
				}
				if err := applyConfigLogging(cmd, cfg); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file whose log_level and log_format configure the daemon")
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP listen address")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	return cmd
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func serve(ctx context.Context, opts *serveOptions) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	reg := newRegistry()
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store, metrics.NewRecorder(reg))

	// TODO: Configure gRPC server security (TLS, authentication) before
	// exposing the daemon outside a trusted network.
	grpcServer := grpc.NewServer()
	simd.RegisterContagionServiceServer(grpcServer, simd.NewContagionGRPCServer(executor))

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", opts.grpcAddr, "error", err)
		return err
	}

	httpSrv := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           simd.NewHTTPServer(executor, reg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", opts.grpcAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			errCh <- err
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", opts.httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
