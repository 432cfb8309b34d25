package commands

import (
	"context"
	"fmt"

	"github.com/thinkex/thinkex/internal/api"
	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/config"
	"github.com/thinkex/thinkex/internal/printer"
	"github.com/thinkex/thinkex/pkg/board"
)

// loadConfig reads the config file named by --config plus env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{
				"Create a thinkex.yml with at least:\n  api_base_url: https://your-backend.example",
				"Or set the environment variable:\n  export THINKEX_API_URL=https://your-backend.example",
			},
		)
	}
	return cfg, nil
}

// newAPIClient builds the HTTP client from config.
func newAPIClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg.APIBaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, cfg, nil
}

// fetchListIntoCache fetches one board and stores it, handling the
// not-found case with a formatted error.
func fetchListIntoCache(ctx context.Context, client *api.Client, store *cache.Store, listID string) (*board.ClusterList, error) {
	list, err := client.GetClusterList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board %s: %w", listID, err)
	}
	if list == nil {
		return nil, printer.ErrorWithContext(
			"board not found",
			"The backend has no board with that id.",
			map[string]string{"Board": listID},
			[]string{"List available boards:\n  thinkex boards"},
		)
	}
	store.SetList(list)
	return list, nil
}
