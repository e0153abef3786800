package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/mcpserver"
	"github.com/mos-jef/title-crm/internal/parcelfs"
	"github.com/mos-jef/title-crm/internal/parcelservice"
)

// RunMCP starts the MCP stdio server over the local catalog. It loads
// records from the SQLite mirror only: stdio servers run short-lived
// and offline, so no remote connection is made. Logs go to stderr to
// keep stdout clean for the protocol.
func RunMCP(opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	cfg, err := app.resolveConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Catalog.ParcelsRoot, 0o755); err != nil {
		return fmt.Errorf("create parcels root: %w", err)
	}
	layout, err := parcelfs.NewLayout(cfg.Catalog.ParcelsRoot)
	if err != nil {
		return fmt.Errorf("init parcel layout: %w", err)
	}

	mirror, err := catalog.OpenMirror(cfg.Catalog.MirrorPath)
	if err != nil {
		return fmt.Errorf("init mirror: %w", err)
	}
	defer mirror.Close()

	initial, err := mirror.LoadAll()
	if err != nil {
		return fmt.Errorf("load mirror: %w", err)
	}

	syncer := catalog.NewSyncer(mirror, nil, logger, nil)
	defer syncer.Close()

	store := catalog.NewStore(initial, syncer)
	svc := parcelservice.NewService(store, layout, nil, logger, 0, false, nil, nil)

	logger.Info("MCP server starting", slog.Int("parcels", len(initial)))
	return mcpserver.New(svc).ServeStdio()
}
