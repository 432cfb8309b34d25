package commands

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/api"
	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/changes"
	"github.com/thinkex/thinkex/internal/printer"
	"github.com/thinkex/thinkex/internal/realtime"
	"github.com/thinkex/thinkex/internal/reconcile"
)

var watchCmd = &cobra.Command{
	Use:   "watch <board-id>",
	Short: "Follow live changes to a board",
	Long: `Follow a board in real time. Server push events are merged into the
local snapshot and each refresh reports which cards appeared or changed.

While the real-time channel is connected the board is push-driven; when it
drops, the watcher falls back to periodic refetching until the channel
reconnects.

Examples:
  # Watch a board
  thinkex watch 4f6b2c`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watcher ties the live-update pipeline together for one board: merge
// events through the reconciler, refetch when the snapshot goes stale, and
// report detector classifications. Scans are serialized by mu; events and
// poll ticks arrive on different goroutines.
type watcher struct {
	listID   string
	client   *api.Client
	store    *cache.Store
	rec      *reconcile.Reconciler
	detector *changes.Detector

	mu sync.Mutex
}

// refresh brings the cached snapshot up to date (refetching when stale or
// forced), rescans, and prints what changed.
func (w *watcher) refresh(ctx context.Context, force bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	list, stale, ok := w.store.GetList(w.listID)
	if force || stale || !ok {
		fetched, err := w.client.GetClusterList(ctx, w.listID)
		if err != nil {
			return err
		}
		if fetched == nil {
			return fmt.Errorf("board %s no longer exists", w.listID)
		}
		w.store.SetList(fetched)
		list = fetched
	}

	w.report(w.detector.Scan(list.Cards(), false))
	return nil
}

// handle merges one server event and refreshes the view.
func (w *watcher) handle(ctx context.Context, msg realtime.Message) {
	w.rec.HandleMessage(msg)
	if err := w.refresh(ctx, false); err != nil {
		printer.Warning("refresh failed: %v\n", err)
	}
}

// report prints classifications in display order so output is stable.
func (w *watcher) report(result changes.Result) {
	if len(result.Classes) == 0 {
		return
	}
	list, _, ok := w.store.GetList(w.listID)
	if !ok {
		return
	}
	for _, card := range list.Cards() {
		switch result.Classes[card.ID] {
		case changes.ClassNew:
			printer.Success("new      %s\n", printer.CardSummary(card))
		case changes.ClassUpdated:
			printer.Step("updated  %s\n", printer.CardSummary(card))
		}
	}
	if result.ScrollTarget != "" {
		printer.Info("         (focus: %s)\n", result.ScrollTarget)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	store := cache.New()
	w := &watcher{
		listID:   args[0],
		client:   client,
		store:    store,
		rec:      reconcile.New(store, client, log),
		detector: changes.NewDetector(),
	}

	// Initial fetch seeds the detector; the first batch is never reported.
	if _, err := fetchListIntoCache(ctx, client, store, w.listID); err != nil {
		return err
	}
	if err := w.refresh(ctx, false); err != nil {
		return err
	}

	channel, err := realtime.NewChannel(&redis.Options{
		Addr:     cfg.Realtime.Addr,
		Password: cfg.Realtime.Password,
		DB:       cfg.Realtime.DB,
	}, cfg.Realtime.Namespace, cfg.Realtime.ClientName, log)
	if err != nil {
		return fmt.Errorf("failed to create real-time channel: %w", err)
	}
	defer channel.Close()

	printer.Info("Watching board %s (Ctrl-C to stop)\n", w.listID)

	// Polling fallback: refetch only while the channel is down.
	poller := realtime.NewPoller(cfg.PollInterval(), func() bool {
		return channel.State() != realtime.StateConnected
	}, func(ctx context.Context) error {
		return w.refresh(ctx, true)
	}, log)
	go poller.Run(ctx)

	err = channel.Listen(ctx, func(msg realtime.Message) {
		w.handle(ctx, msg)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("real-time channel failed: %w", err)
	}

	printer.Info("\nStopped watching.\n")
	return nil
}
