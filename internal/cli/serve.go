package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/numflow/numflow/internal/server"
	"github.com/numflow/numflow/pkg/cache"
	"github.com/numflow/numflow/pkg/pipeline"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

The API manages graphs as in-memory sessions: create a graph, add nodes
and edges, configure optimization, and execute it. Execution results are
cached; with --redis the cache is shared across server instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := serveCache(redisURL, noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			defer store.Close()

			runner := pipeline.NewRunner(store, nil, c.Logger)
			srv := server.New(runner, c.Logger)

			printInfo("Serving API on %s", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared cache (redis://host:port/db)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveCache picks the cache backend for the server.
func serveCache(redisURL string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisURL != "":
		return cache.NewRedisCache(redisURL)
	default:
		return newCache(false)
	}
}
