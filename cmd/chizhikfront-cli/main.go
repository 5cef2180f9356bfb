package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chizhikfront/internal/bootstrap"
	"chizhikfront/internal/catalog"
	"chizhikfront/internal/config"
	"chizhikfront/internal/logger"
	"chizhikfront/internal/repository"
	jsonfile "chizhikfront/internal/repository/json"
	"chizhikfront/internal/storefront"
)

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		city       = flag.String("city", "", "city name or UUID (optional, overrides config)")
		outputFile = flag.String("out", "", "override output file (optional)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	slog.SetDefault(log)

	// overrides
	if *city != "" {
		cfg.CLI.City = *city
	}
	if *outputFile != "" {
		cfg.CLI.OutputFile = *outputFile
	}
	if cfg.CLI.OutputFile == "" {
		cfg.CLI.OutputFile = "./output/deals.json"
	}

	api, err := bootstrap.BuildAPI(cfg, log, 5)
	if err != nil {
		log.Error("build api client failed", "err", err)
		os.Exit(1)
	}
	store, err := bootstrap.BuildCache(cfg, log)
	if err != nil {
		log.Error("build cache failed", "err", err)
		os.Exit(1)
	}

	front := storefront.New(api, store, log, storefront.Options{
		TreeTTL:   cfg.TreeTTL(),
		OffersTTL: cfg.OffersTTL(),
		PageSize:  cfg.Pagination.PageSize,
		DefaultCity: storefront.City{
			ID:   cfg.Chizhik.DefaultCityID,
			Name: cfg.Chizhik.DefaultCityName,
		},
	})

	// общий timeout на всю выгрузку: дерево может строиться на бекенде
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second*time.Duration(cfg.HTTP.Retries))
	defer cancel()

	selected, err := resolveCity(ctx, front, cfg.CLI.City)
	if err != nil {
		log.Error("resolve city failed", "err", err, "city", cfg.CLI.City)
		os.Exit(1)
	}
	log.Info("city selected", "id", selected.ID, "name", selected.Name)

	sess := storefront.NewSession(selected)
	list, err := front.LoadPromo(ctx, sess)
	if err != nil {
		log.Error("load deals failed", "err", err)
		os.Exit(1)
	}
	if sess.PromoCatID == 0 {
		log.Warn("no promo category for this city, nothing to save")
	}

	var catMeta *repository.CategoryMeta
	if sess.PromoCatID != 0 {
		catMeta = &repository.CategoryMeta{ID: sess.PromoCatID}
		if c, ok := catalog.FindByID(sess.Tree, sess.PromoCatID); ok {
			catMeta.Name = c.Name
			catMeta.Slug = c.Slug
		}
	}

	res := repository.DealsResult{
		FetchedAt:  time.Now().UTC().Format(time.RFC3339),
		City:       &repository.CityMeta{ID: selected.ID, Name: selected.Name},
		Category:   catMeta,
		Discounted: list.Discounted,
		Products:   list.Items,
		Count:      len(list.Items),
	}

	repo := jsonfile.New(cfg.CLI.OutputFile, log)
	if err := repo.SaveDeals(ctx, res); err != nil {
		log.Error("save json failed", "err", err)
		os.Exit(1)
	}

	log.Info("done",
		"env", cfg.Env,
		"city_id", selected.ID,
		"promo_cat_id", sess.PromoCatID,
		"discounted", list.Discounted,
		"count", len(list.Items),
		"output", cfg.CLI.OutputFile,
	)
}

// resolveCity accepts a UUID, a city name to search for, or nothing
// (persisted selection / default city).
func resolveCity(ctx context.Context, front *storefront.Service, arg string) (storefront.City, error) {
	if arg == "" {
		return front.LoadCity(ctx), nil
	}
	if storefront.ValidCityID(arg) {
		return storefront.City{ID: arg, Name: "Город"}, nil
	}
	return front.FindCity(ctx, arg)
}
