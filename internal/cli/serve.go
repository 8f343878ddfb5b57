package cli

import (
	"github.com/spf13/cobra"

	"github.com/jgtann/gdp-dashboard/internal/app"
)

func newServeCommand(o *options) *cobra.Command {
	var (
		host    string
		port    int
		preload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Start the dashboard web server.

Examples:
  dashboard serve                       # Listen on the configured port
  dashboard serve --port 3000 --preload # Load the source before serving`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				o.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				o.cfg.Server.Port = port
			}
			if preload {
				o.cfg.Data.Preload = true
			}

			a, err := app.NewApplication(o.cfg, nil)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Interface to listen on")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().BoolVar(&preload, "preload", false, "Load the source before accepting requests")
	return cmd
}
