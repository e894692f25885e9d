package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"docassist/internal/auth"
	"docassist/internal/config"
	"docassist/internal/domain/repositories"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	llmRepo "docassist/internal/domain/repositories/llm"
	"docassist/internal/domain/services"
	"docassist/internal/handler"
	"docassist/internal/middleware"
	"docassist/internal/realtime"
	"docassist/internal/repository/memory"
	"docassist/internal/repository/postgres"
	postgresDocsys "docassist/internal/repository/postgres/docsystem"
	postgresLLM "docassist/internal/repository/postgres/llm"
	"docassist/internal/search"
	"docassist/internal/service"
	"docassist/internal/service/assistant"
	serviceDocsys "docassist/internal/service/docsystem"
	"docassist/internal/service/docsystem/converter"
	serviceLLM "docassist/internal/service/llm"
	"docassist/internal/service/reminders"
	"docassist/internal/service/tasks"
	"docassist/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// repos bundles whichever storage backend the server runs on
type repos struct {
	folders       docsysRepo.FolderRepository
	documents     docsysRepo.DocumentRepository
	notes         docsysRepo.NoteRepository
	audio         docsysRepo.AudioRepository
	todos         repositories.TodoRepository
	notifications repositories.NotificationRepository
	chat          llmRepo.ChatRepository
	preferences   repositories.UserPreferencesRepository
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	checks := map[string]handler.Pinger{}

	var r repos
	if cfg.SupabaseDBURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		r = repos{
			folders:       postgresDocsys.NewFolderRepository(repoConfig),
			documents:     postgresDocsys.NewDocumentRepository(repoConfig),
			notes:         postgresDocsys.NewNoteRepository(repoConfig),
			audio:         postgresDocsys.NewAudioRepository(repoConfig),
			todos:         postgres.NewTodoRepository(repoConfig),
			notifications: postgres.NewNotificationRepository(repoConfig),
			chat:          postgresLLM.NewChatRepository(repoConfig),
			preferences:   postgres.NewUserPreferencesRepository(repoConfig),
		}
		checks["database"] = pool.Ping
		logger.Info("database connected")
	} else {
		if cfg.Environment == "prod" {
			log.Fatal("SUPABASE_DB_URL is required in prod")
		}
		store := memory.NewStore()
		r = repos{
			folders:       store.Folders(),
			documents:     store.Documents(),
			notes:         store.Notes(),
			audio:         store.Audio(),
			todos:         store.Todos(),
			notifications: store.Notifications(),
			chat:          store.Chat(),
			preferences:   store.Preferences(),
		}
		logger.Warn("SUPABASE_DB_URL not set - using in-memory store, data is lost on restart")
	}

	// Optional collaborators. Interface variables stay nil unless the backend is up.
	var (
		publisher  services.NotificationPublisher
		subscriber services.NotificationSubscriber
		indexer    services.SearchIndexer
		files      services.FileStore
		meili      *search.Meili
	)

	if cfg.RedisURL != "" {
		hub, err := realtime.NewHub(cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("redis unavailable - live notifications disabled", "error", err)
		} else {
			defer hub.Close()
			publisher, subscriber = hub, hub
			checks["redis"] = hub.Ping
		}
	}

	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		defer meili.Close()
		indexer = meili
	}

	if cfg.StorageEndpoint != "" {
		store, err := storage.New(ctx, storage.Config{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.StorageUseSSL,
		}, logger)
		if err != nil {
			logger.Warn("object storage unavailable - uploads disabled", "error", err)
		} else {
			files = store
		}
	}

	// LLM providers
	registry := serviceLLM.NewProviderRegistry(serviceLLM.NewProviderFactory(cfg))
	if err := registry.Validate(); err != nil {
		log.Fatalf("Failed to set up LLM providers: %v", err)
	}
	if cfg.AnthropicAPIKey == "" && cfg.OpenRouterAPIKey == "" {
		logger.Warn("no LLM API key set - only the lorem provider will answer")
	}
	chatGenerator := serviceLLM.NewGenerator(registry, cfg.DefaultProvider, cfg.DefaultModel, logger)
	classifierGenerator := serviceLLM.NewGenerator(registry, cfg.ClassifierProvider, cfg.ClassifierModel, logger)

	prompts, err := assistant.LoadPrompts()
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}

	// Document services
	validator := serviceDocsys.NewResourceValidator(r.folders)
	folderService := serviceDocsys.NewFolderService(r.folders, r.documents, r.notes, r.audio, logger)
	docService := serviceDocsys.NewDocumentService(r.documents, r.folders, validator, indexer, logger)
	noteService := serviceDocsys.NewNoteService(r.notes, r.folders, validator, indexer, logger)
	audioService := serviceDocsys.NewAudioService(r.audio, r.folders, validator, logger)

	// Tasks and reminders
	notifier := tasks.NewNotifier(r.notifications, publisher, logger)
	extractor := assistant.NewTodoExtractor(classifierGenerator, prompts, cfg.ClassifierModel, logger)
	todoService := tasks.NewTodoService(r.todos, extractor, notifier, logger)
	notificationService := tasks.NewNotificationService(r.notifications, logger)
	sweeper := reminders.NewSweeper(r.todos, notifier, cfg.DeadlineAdvanceHours, logger)

	// Assistant
	classifier := assistant.NewDocumentClassifier(classifierGenerator, prompts, cfg.ClassifierModel, logger)
	organizer := assistant.NewOrganizerService(docService, folderService, classifier, logger)
	chatService := assistant.NewChatService(assistant.ChatRepositories{
		Chat:      r.chat,
		Folders:   r.folders,
		Documents: r.documents,
		Notes:     r.notes,
		Audio:     r.audio,
	}, chatGenerator, prompts, logger)

	searchService := search.NewService(meili, r.documents, r.notes, logger)
	prefsService := service.NewUserPreferencesService(r.preferences, logger)

	logger.Info("services initialized",
		"realtime", subscriber != nil,
		"meilisearch", meili != nil,
		"uploads", files != nil,
	)

	h := &handler.Handlers{
		Health:        handler.NewHealthHandler(checks),
		Folders:       handler.NewFolderHandler(folderService, logger),
		Documents:     handler.NewDocumentHandler(docService, logger),
		Notes:         handler.NewNoteHandler(noteService, logger),
		Audio:         handler.NewAudioHandler(audioService, logger),
		Uploads:       handler.NewUploadHandler(files, converter.NewRegistry(), docService, audioService, logger),
		Todos:         handler.NewTodoHandler(todoService, docService, noteService, audioService, logger),
		Notifications: handler.NewNotificationHandler(notificationService, subscriber, sweeper, nil, logger),
		Organize:      handler.NewOrganizeHandler(organizer, logger),
		Chat:          handler.NewChatHandler(chatService, logger),
		Search:        handler.NewSearchHandler(searchService, logger),
		Preferences:   handler.NewUserPreferencesHandler(prefsService, logger),
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, h)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(jwtVerifier, logger)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestLogger(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go runSweeps(ctx, sweeper, time.Hour, logger)

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// runSweeps fires the deadline sweep for every user on a fixed interval
func runSweeps(ctx context.Context, sweeper services.DeadlineSweeper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			result, err := sweeper.SweepAll(ctx, now)
			if err != nil {
				logger.Error("deadline sweep failed", "error", err)
				continue
			}
			if result.Notified > 0 || result.Failed > 0 {
				logger.Info("deadline sweep",
					"checked", result.Checked,
					"notified", result.Notified,
					"failed", result.Failed,
				)
			}
		}
	}
}
