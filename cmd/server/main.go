package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/tuannm99/novarel/internal"
	"github.com/tuannm99/novarel/server/novarelwire"
)

func main() {
	cfgPath := flag.String("config", "", "config file (yaml)")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	err = novarelwire.Run(novarelwire.ServerConfig{
		Addr:        cfg.Server.Addr,
		CatalogName: cfg.Catalog.Name,
		ImportDir:   cfg.Import.Dir,
		Files:       cfg.Import.Files,
		Queries:     cfg.Import.Queries,
	})
	if err != nil {
		slog.Error("server stopped", "app", cfg.AppName, "err", err)
		os.Exit(1)
	}
	slog.Info("server shut down", "app", cfg.AppName)
}
