package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/admin"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/broker"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/config"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/db"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/handlers"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/importer"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/repository"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/store"
)

// cmd/api/main.go
func main() {
	cfg := config.Load() // .env

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	_ = config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port, "mongo_db", cfg.MongoDB)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()
	if *task != "" {
		switch *task {
		case "seed":
			// conecta somente o necessário para o seed
			client, err := db.NewMongoClient(cfg.MongoURI)
			if err != nil {
				slog.Error("mongo_connect_error", "err", err)
				os.Exit(1)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			repo := repository.NewEstadoRepository(client.Database(cfg.MongoDB))
			s := store.New(slog.Default())
			if err := admin.SeedDemo(context.Background(), s, repo, slog.Default()); err != nil {
				slog.Error("seed_failed", "err", err)
				os.Exit(1)
			}
			slog.Info("seed_done")
			return // encerra o processo sem subir HTTP
		default:
			slog.Error("unknown_admin_task", "task", *task)
			os.Exit(2)
		}
	}

	// conecta Mongo
	client, err := db.NewMongoClient(cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := repository.NewEstadoRepository(client.Database(cfg.MongoDB))

	// restaura o último snapshot gravado, se houver
	s := store.New(slog.Default())
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	est, found, err := repo.Carregar(bootCtx)
	bootCancel()
	if err != nil {
		log.Fatalf("estado load error: %v", err)
	}
	if found {
		s.Restaurar(est)
		slog.Info("estado_restaurado", "gestores", len(est.Gestores), "associados", len(est.Associados))
	}

	// cada mutação volta a ser persistida via observer
	persistor := repository.NewPersistor(repo, slog.Default(), cfg.PersistTimeout)
	s.Subscribe(persistor.Observar)

	// publisher (Rabbit)
	pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbitmq connect error: %v", err)
	}
	defer pub.Close()

	imp := importer.New(s, slog.Default())
	h := handlers.NewDashboardHandler(s, imp, pub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/gestores", h.Gestores)
	mux.HandleFunc("/api/gestores/", h.GestorByID)
	mux.HandleFunc("/api/associados", h.Associados)
	mux.HandleFunc("/api/agencias", h.Agencias)
	mux.HandleFunc("/api/agencias/", h.AgenciaMatriz)
	mux.HandleFunc("/api/movimentacoes", h.Movimentacoes)
	mux.HandleFunc("/api/analises", h.Analises)
	mux.HandleFunc("/api/dimensionamento", h.Dimensionamento)
	mux.HandleFunc("/api/realocacoes", h.Realocacoes)
	mux.HandleFunc("/api/importacoes", h.Importacoes)
	mux.HandleFunc("/api/exportacoes/", h.Exportacoes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	// start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown error", "err", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http_request",
			"method", r.Method, "path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
