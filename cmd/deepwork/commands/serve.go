package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/web"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and session history API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			server := web.NewServer(cfg, repo, nil, port)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Start()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard available at: http://%s\n", server.GetAddress())

			select {
			case err := <-errChan:
				return err
			case <-sigChan:
				log.Println("Received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("error shutting down web server: %w", err)
			}
			return nil
		},
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return serveCmd
}
