// Space Engineers 2 calculator: ores, components and blocks, with the
// resource chain of each block. Backed by a sqlite database.
package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/powerman/structlog"

	"github.com/hzeller/se2calc/internal/config"
	"github.com/hzeller/se2calc/internal/pkg"
	"github.com/hzeller/se2calc/internal/seed"
	"github.com/hzeller/se2calc/internal/store"
	"github.com/hzeller/se2calc/internal/web"
)

var log = structlog.New(structlog.KeyUnit, "main")

func main() {
	pkg.InitLog()

	flags := config.NewFlags(flag.CommandLine)
	flag.Parse()

	if err := run(flags); err != nil {
		log.Fatal(err)
	}
}

func run(flags *config.Flags) error {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	pkg.SetLogLevel(cfg.LogLevel)

	db, err := pkg.OpenSqliteDBx(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	dataStore, err := store.NewSqlStore(db, true)
	if err != nil {
		return err
	}

	if cfg.Seed != "" {
		fixture, err := seed.LoadFile(cfg.Seed)
		if err != nil {
			return err
		}
		if err := seed.Apply(dataStore, fixture); err != nil {
			// Partially seeded is still usable.
			log.PrintErr("seed incomplete", "file", cfg.Seed, "err", err)
		}
	}

	templates, err := web.NewTemplateRenderer(web.Templates(cfg.TemplateDir), cfg.CacheTemplates)
	if err != nil {
		return err
	}

	editNets, err := cfg.ParseEditNets()
	if err != nil {
		return err
	}
	trustedProxies, err := cfg.ParseTrustedProxies()
	if err != nil {
		return err
	}
	access := web.NewEditAccess(editNets, trustedProxies)

	mux := http.NewServeMux()
	web.AddIndexHandler(mux, dataStore, templates, access)
	web.AddOreHandler(mux, dataStore, templates, access)
	web.AddComponentHandler(mux, dataStore, templates, access)
	web.AddBlockHandler(mux, dataStore, templates, access)
	web.AddApiHandler(mux, dataStore)
	web.AddSitemapHandler(mux, dataStore, cfg.SitePrefix)
	web.AddStaticHandler(mux)
	web.AddMetricsHandler(mux)

	log.Info("listening", "port", cfg.Port, "db", cfg.DB,
		"edit_nets", len(editNets), "trusted_proxies", len(trustedProxies))
	return http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), mux)
}
