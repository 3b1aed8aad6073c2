package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdesk/internal/tui"
)

func runLaunch(cmd *cobra.Command, opts *options) error {
	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.webOnly {
		return serve(cmd.Context(), cfg.WebPort, func() (*app, error) {
			return openApp(cmd.Context(), cfg, log.Default())
		})
	}

	logFile, err := openLogFile(cfgPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	a, err := openApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := a.webServer().Handler()
		go func() {
			logger.Printf("[web][listen][ok] http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Printf("[web][listen][err] %v", err)
			}
		}()
	}

	return tui.Run(tui.Deps{
		Tasks:   a.tasks,
		Users:   a.users,
		Reports: a.reports,
		Logger:  logger,
	})
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web view without the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg.WebPort, func() (*app, error) {
				return openApp(cmd.Context(), cfg, log.Default())
			})
		},
	}
}

// serve blocks until the listener fails or the process is interrupted.
func serve(ctx context.Context, port int, open func() (*app, error)) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := open()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.webServer().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Printf("[web][listen][ok] http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Printf("[web][shutdown][ok]")
		return srv.Shutdown(shutdownCtx)
	}
}
