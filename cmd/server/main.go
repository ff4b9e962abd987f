package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/cidash/internal/app/postgres"
	"github.com/beldeveloper/cidash/internal/config"
	"github.com/beldeveloper/cidash/pkg/logger"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cliApp := &cli.App{
		Name:  "cidash",
		Usage: "CI/CD dashboard API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML or TOML configuration file",
				EnvVars: []string{"CIDASH_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the REST API and the gRPC health servers",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the database schema and exit",
				Action: migrate,
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("main: %v", err)
	}
}

func setup(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if err = logger.InitStandard(cfg.Log); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cont, cleanup, err := initializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()
	if err = postgres.Migrate(ctx, cont.conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return run(ctx, cfg, cont)
}

func migrate(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	conn, cleanup, err := newPostgresConn(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err = postgres.Migrate(c.Context, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database schema is up to date")
	return nil
}

type container struct {
	conn   *pgxpool.Pool
	router *httprouter.Router
	health *health.Server
}

func newContainer(conn *pgxpool.Pool, router *httprouter.Router, hs *health.Server) container {
	return container{
		conn:   conn,
		router: router,
		health: hs,
	}
}

func newEnv(cfg config.Config) app.Env {
	return app.Env(cfg.Env)
}

func newDeployTarget(cfg config.Config) app.DeployTarget {
	return app.DeployTarget{
		Environment: cfg.Simulation.Environment,
		URL:         cfg.Simulation.URL,
	}
}

func newCollector(reg *prometheus.Registry) *metrics.Collector {
	return metrics.NewCollector(reg)
}

func newPostgresConn(ctx context.Context, cfg config.Config) (*pgxpool.Pool, func(), error) {
	conn, err := pgxpool.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("main.newPostgresConn: %w; host=%s db=%s", err, cfg.Database.Host, cfg.Database.Name)
	}
	return conn, conn.Close, nil
}

func newHealthServer() *health.Server {
	return health.NewServer()
}

// run serves HTTP and gRPC health until the context is cancelled, then shuts both down.
func run(ctx context.Context, cfg config.Config, cont container) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: cont.router,
	}
	grpcSrv := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, cont.health)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.HealthPort))
	if err != nil {
		return fmt.Errorf("main.run: listen grpc: %w; port=%d", err, cfg.GRPC.HealthPort)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Listening :%d for HTTP connections...", cfg.HTTP.Port)
		var err error
		if cfg.HTTP.CertFile != "" {
			err = srv.ListenAndServeTLS(cfg.HTTP.CertFile, cfg.HTTP.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("main.run: serve http: %w; port=%d", err, cfg.HTTP.Port)
		}
		return nil
	})
	g.Go(func() error {
		log.Infof("Listening :%d for gRPC health checks...", cfg.GRPC.HealthPort)
		cont.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Stopping the application...")
		cont.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		if err != nil {
			return fmt.Errorf("main.run: server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
