package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"energywatch/internal/audit"
	"energywatch/internal/auth"
	electricapp "energywatch/internal/electric/application"
	electrichttp "energywatch/internal/electric/interfaces/http"
	"energywatch/internal/feeds/gasfeed"
	"energywatch/internal/feeds/gridfeed"
	"energywatch/internal/feeds/lngfeed"
	gasapp "energywatch/internal/gas/application"
	gaspg "energywatch/internal/gas/infrastructure/postgres"
	gashttp "energywatch/internal/gas/interfaces/http"
	ingesthttp "energywatch/internal/ingest/interfaces/http"
	"energywatch/internal/observability/metrics"
	peakapp "energywatch/internal/peaks/application"
	peakpg "energywatch/internal/peaks/infrastructure/postgres"
	projectapp "energywatch/internal/projects/application"
	projectpg "energywatch/internal/projects/infrastructure/postgres"
	projecthttp "energywatch/internal/projects/interfaces/http"
	readingpg "energywatch/internal/readings/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	readingStore := readingpg.NewReadingStore(db)
	peakService, err := peakapp.NewService(peakpg.NewPeakRepository(db), logger)
	if err != nil {
		logger.Fatalf("peak service error: %v", err)
	}

	channels := gridfeed.DefaultChannelMap()
	if cfg.ChannelsConfig != "" {
		channels, err = gridfeed.LoadChannelMap(cfg.ChannelsConfig)
		if err != nil {
			logger.Fatalf("channel map error: %v", err)
		}
	}
	gridClient, err := gridfeed.NewClient(cfg.GridStatURL, cfg.GridLoadURL, cfg.GridUser, cfg.GridPassword, channels)
	if err != nil {
		logger.Fatalf("grid feed error: %v", err)
	}

	supplyService, err := electricapp.NewSupplyService(gridClient, gridClient, readingStore, logger)
	if err != nil {
		logger.Fatalf("supply service error: %v", err)
	}
	demandService, err := electricapp.NewDemandService(gridClient, gridClient, readingStore, peakService, logger)
	if err != nil {
		logger.Fatalf("demand service error: %v", err)
	}
	peakService.BindRecomputer(demandService)
	electricHandler, err := electrichttp.NewHandler(supplyService, demandService, peakService)
	if err != nil {
		logger.Fatalf("electric handler error: %v", err)
	}

	tankStore := gaspg.NewTankStore(db)
	eodStore := gaspg.NewEODStore(db)
	gasClient, err := gasfeed.NewClient(cfg.GasHistorianURL, cfg.GasHistorianUser, cfg.GasHistorianPassword)
	if err != nil {
		logger.Fatalf("gas feed error: %v", err)
	}
	lngClient, err := lngfeed.NewClient(cfg.LNGSendoutURL, cfg.LNGLevelsURL, cfg.LNGLevelsKey)
	if err != nil {
		logger.Fatalf("lng feed error: %v", err)
	}
	gasService, err := gasapp.NewService(gasClient, lngClient, tankStore, eodStore, logger)
	if err != nil {
		logger.Fatalf("gas service error: %v", err)
	}
	gasHandler, err := gashttp.NewHandler(gasService)
	if err != nil {
		logger.Fatalf("gas handler error: %v", err)
	}

	projectService, err := projectapp.NewService(projectpg.NewProjectRepository(db), logger)
	if err != nil {
		logger.Fatalf("project service error: %v", err)
	}
	projectHandler, err := projecthttp.NewHandler(projectService)
	if err != nil {
		logger.Fatalf("project handler error: %v", err)
	}

	ingestHandler, err := ingesthttp.NewHandler(readingStore, peakService, tankStore, eodStore, projectService,
		ingesthttp.WithAudit(auditRepo),
		ingesthttp.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/electric/current/", electricHandler)
	mux.Handle("/api/v1/electric/profile/", electricHandler)
	mux.Handle("/api/v1/electric/summary/", electricHandler)
	mux.Handle("/api/v1/electric/report/", electricHandler)
	mux.Handle("/api/v1/electric/cont/project/", projectHandler)
	mux.Handle("/api/v1/electric/project/", projectHandler)
	mux.Handle("/api/v1/electric/submit/", ingestHandler)
	mux.Handle("/api/v1/natural-gas/submit/", ingestHandler)
	mux.Handle("/api/v1/natural-gas/", gasHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL          string
	HTTPAddr             string
	ChannelsConfig       string
	GridStatURL          string
	GridLoadURL          string
	GridUser             string
	GridPassword         string
	GasHistorianURL      string
	GasHistorianUser     string
	GasHistorianPassword string
	LNGSendoutURL        string
	LNGLevelsURL         string
	LNGLevelsKey         string
	JWTSecret            string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:          getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:             getenvDefault("HTTP_ADDR", ":8080"),
		ChannelsConfig:       getenvDefault("CHANNELS_CONFIG", ""),
		GridStatURL:          getenvDefault("GRID_STAT_URL", ""),
		GridLoadURL:          getenvDefault("GRID_LOAD_URL", ""),
		GridUser:             getenvDefault("GRID_USER", ""),
		GridPassword:         getenvDefault("GRID_PASSWORD", ""),
		GasHistorianURL:      getenvDefault("GAS_HISTORIAN_URL", ""),
		GasHistorianUser:     getenvDefault("GAS_HISTORIAN_USER", ""),
		GasHistorianPassword: getenvDefault("GAS_HISTORIAN_PASSWORD", ""),
		LNGSendoutURL:        getenvDefault("LNG_SENDOUT_URL", ""),
		LNGLevelsURL:         getenvDefault("LNG_LEVELS_URL", ""),
		LNGLevelsKey:         getenvDefault("LNG_LEVELS_KEY", ""),
		JWTSecret:            getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.GridStatURL == "" || cfg.GridLoadURL == "" {
		log.Fatal("GRID_STAT_URL and GRID_LOAD_URL are required")
	}
	if cfg.GasHistorianURL == "" {
		log.Fatal("GAS_HISTORIAN_URL is required")
	}
	if cfg.LNGSendoutURL == "" || cfg.LNGLevelsURL == "" {
		log.Fatal("LNG_SENDOUT_URL and LNG_LEVELS_URL are required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
