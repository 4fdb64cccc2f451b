package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/auth"
	"github.com/ukydev/shop-admin/internal/config"
	"github.com/ukydev/shop-admin/internal/handlers"
	"github.com/ukydev/shop-admin/internal/images"
	"github.com/ukydev/shop-admin/internal/middleware"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "shopadmin",
		Short:        "Mechanic shop admin API and tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	load := func(cmd *cobra.Command) (*app, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		logger, err := cfg.NewLogger()
		if err != nil {
			return nil, err
		}
		logger.SetOutput(cmd.ErrOrStderr())
		return newApp(cmd.Context(), cfg, logger)
	}

	root.AddCommand(serveCmd(load), exportCmd(load), importCmd(load), statsCmd(load), seedCmd(load))
	return root
}

type loader func(cmd *cobra.Command) (*app, error)

func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			return runServer(a)
		},
	}
}

func runServer(a *app) error {
	authService, err := auth.NewService(a.cfg.JWTSecret, a.cfg.JWTExpiry)
	if err != nil {
		return err
	}
	svc := appointments.NewService(a.repo, a.registry, a.publisher(), a.log)
	imageCfg := images.DefaultConfig()

	router := handlers.NewRouter(handlers.Deps{
		Auth:           authService,
		Users:          a.users,
		Appointments:   svc,
		Registry:       a.registry,
		Images:         images.NewService(a.store, imageCfg, "/api/services", a.log),
		ImageConfig:    imageCfg,
		Records:        handlers.StaticRecords(demoRecords(time.Now())),
		Logger:         a.log,
		StorageBackend: a.cfg.StorageBackend,
		CORSOrigins:    a.cfg.CORSOrigins,
		RateLimiter:    middleware.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithFields(log.Fields{
			"port":    a.cfg.Port,
			"storage": a.cfg.StorageBackend,
			"codes":   a.registry.Len(),
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func exportCmd(load loader) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every tracking code as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := a.registry.Export()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.log.WithFields(log.Fields{"file": out, "count": a.registry.Len()}).Info("Exported tracking codes")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace every tracking code with the contents of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := a.registry.Import(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tracking codes\n", a.registry.Len())
			return nil
		},
	}
}

type statsOutput struct {
	Registry models.TrackingStatistics `json:"registry"`
	Codes    tracking.CodeStatistics   `json:"codes"`
	ByYear   map[int][]string          `json:"codesByYear"`
}

func statsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print tracking code statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			records := a.registry.Search("")
			codes := make([]string, len(records))
			for i, rec := range records {
				codes[i] = rec.Code
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(statsOutput{
				Registry: a.registry.Statistics(),
				Codes:    tracking.SummarizeCodes(codes, time.Now()),
				ByYear:   tracking.GroupByYear(tracking.SortCodes(codes, true)),
			})
		},
	}
}

func seedCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Register tracking codes for the demo appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %d tracking codes\n", n)
			return nil
		},
	}
}
