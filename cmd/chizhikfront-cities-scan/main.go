package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
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

// Быстрая проверка, в каких городах витрина вообще живая:
// сколько плиток категорий и есть ли скидочная витрина.

var defaultCities = []string{
	"Москва", "Санкт-Петербург", "Казань",
	"Екатеринбург", "Новосибирск", "Нижний Новгород",
}

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		citiesArg  = flag.String("cities", "", "comma-separated city names (default: popular list)")
		workers    = flag.Int("workers", 3, "concurrent workers (goroutines)")
		outPath    = flag.String("out", "./output/cities.json", "output json file")
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
		Env:       cfg.Env,
	})
	slog.SetDefault(log)

	names := defaultCities
	if *citiesArg != "" {
		names = names[:0]
		for _, n := range strings.Split(*citiesArg, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	if len(names) == 0 {
		log.Error("no cities to scan")
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = 3
	}

	api, err := bootstrap.BuildAPI(cfg, log, *workers*2)
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

	ctx := context.Background()

	nameCh := make(chan string, len(names))
	reportCh := make(chan repository.CityReport, len(names))

	var scanned uint64

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range nameCh {
				atomic.AddUint64(&scanned, 1)
				reportCh <- scanCity(ctx, front, name, log)
			}
		}()
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			log.Info("scan progress", "scanned", atomic.LoadUint64(&scanned), "total", len(names))
		}
	}()

	for _, n := range names {
		nameCh <- n
	}
	close(nameCh)

	wg.Wait()
	close(reportCh)

	reports := make([]repository.CityReport, 0, len(names))
	for r := range reportCh {
		reports = append(reports, r)
	}

	res := repository.CitiesResult{
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Cities:    reports,
		Count:     len(reports),
	}
	repo := jsonfile.New(*outPath, log)
	if err := repo.SaveCities(ctx, res); err != nil {
		log.Error("save cities json failed", "err", err)
		os.Exit(1)
	}

	log.Info("done", "cities", len(reports), "out", *outPath)
}

func scanCity(ctx context.Context, front *storefront.Service, name string, log *slog.Logger) repository.CityReport {
	report := repository.CityReport{CityMeta: repository.CityMeta{Name: name}}

	city, err := front.FindCity(ctx, name)
	if err != nil {
		log.Warn("FindCity failed", "city", name, "err", err)
		report.Err = err.Error()
		return report
	}
	report.ID = city.ID
	report.Name = city.Name

	sess := storefront.NewSession(city)
	list, err := front.LoadPromo(ctx, sess)
	if err != nil {
		log.Warn("LoadPromo failed", "city", name, "err", err)
		report.Err = err.Error()
		return report
	}

	report.DisplayCategories = len(sess.DisplayCats)
	report.PromoCategoryID = sess.PromoCatID
	report.Deals = len(list.Items)

	if c, ok := catalog.FindByID(sess.Tree, sess.PromoCatID); ok {
		log.Debug("promo category", "city", name, "id", c.ID, "slug", c.Slug)
	}
	return report
}
