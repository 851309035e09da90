package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/petsview/internal/petservice"
	"github.com/oakwood-commons/petsview/pkg/logger"
)

var (
	serveAddr       string
	serveErrorEvery int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fixture pet service",
	Long: `Serves the fixture dogs and fishes on GET ` + petservice.DataPath + `, with
/liveness and /readiness probes. Point petServiceUrl at it to try the view.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		lgr := logger.ForComponent(rootCtx, "pet-service")
		svc := petservice.New(petservice.Options{
			ErrorEvery: serveErrorEvery,
			Logger:     *lgr,
		})
		return svc.ListenAndServe(ctx, serveAddr, func(a net.Addr) {
			fmt.Fprintf(cmd.OutOrStdout(), "serving pets on http://%s%s\n", a.String(), petservice.DataPath)
		})
	},
}

func init() { //nolint:gochecknoinits
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7000", "listen address")
	serveCmd.Flags().IntVar(&serveErrorEvery, "error-every", 0, "fail every Nth data call with 503 (0 = never)")
}

