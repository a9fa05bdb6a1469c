package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	adminapp "github.com/sngm3741/feedback-dashboard/internal/admin/application"
	"github.com/sngm3741/feedback-dashboard/internal/config"
	"github.com/sngm3741/feedback-dashboard/internal/infrastructure/csvfile"
	"github.com/sngm3741/feedback-dashboard/internal/infrastructure/genai"
	mongodoc "github.com/sngm3741/feedback-dashboard/internal/infrastructure/mongo"
	adminhttp "github.com/sngm3741/feedback-dashboard/internal/interfaces/http/admin"
	publichttp "github.com/sngm3741/feedback-dashboard/internal/interfaces/http/public"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/views"
	publicapp "github.com/sngm3741/feedback-dashboard/internal/public/application"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server は HTTP サーバーのライフサイクルを管理し、User/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	location       *time.Location
	addr           string
	allowedOrigins []string
	storeBackend   string
	csvPath        string
	flashSecret    []byte
	cookieSecure   bool
	reviewRepo     publicapp.ReviewRepository
	reviewCommands publicapp.ReviewCommandService
	dashboard      adminapp.DashboardService
	processor      *genai.Processor
	views          *views.Renderer
}

// New は Config と (任意の) Mongo クライアントからアプリケーションサービスとハンドラを組み立てる。
// client が nil の場合は CSV ストアを使う。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.New(os.Stdout, "[feedback-dashboard] ", log.LstdFlags)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
		logger.Printf("タイムゾーン %s の読み込みに失敗: %v, ローカル時刻を使用します", cfg.Timezone, err)
	}

	processorCfg, err := genai.LoadProcessorConfig(cfg.ProcessorConfigPath)
	if err != nil {
		return nil, err
	}
	processorCfg = processorCfg.WithModels(cfg.GenAIModels)
	generator := genai.NewGeminiClient(cfg.GenAIBaseURL, cfg.APIKey, cfg.GenAITimeout)
	processor, err := genai.NewProcessor(generator, processorCfg, logger)
	if err != nil {
		return nil, err
	}

	renderer, err := views.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		location:       loc,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		csvPath:        cfg.ReviewsCSVPath,
		flashSecret:    cfg.FlashSecret,
		cookieSecure:   cfg.CookieSecure,
		processor:      processor,
		views:          renderer,
	}

	var adminRepo adminapp.ReviewRepository
	if client != nil && cfg.StoreBackend == config.StoreBackendMongo {
		database := client.Database(cfg.MongoDatabase)
		srv.storeBackend = config.StoreBackendMongo
		srv.reviewRepo = mongodoc.NewReviewRepository(database, cfg.ReviewCollection)
		adminRepo = mongodoc.NewAdminReviewRepository(database, cfg.ReviewCollection)
	} else {
		table := csvfile.NewTable(cfg.ReviewsCSVPath)
		srv.storeBackend = config.StoreBackendCSV
		srv.reviewRepo = csvfile.NewReviewRepository(table)
		adminRepo = csvfile.NewAdminReviewRepository(table)
	}

	srv.reviewCommands = publicapp.NewReviewCommandService(srv.reviewRepo, processor)
	srv.dashboard = adminapp.NewDashboardService(adminRepo)

	return srv, nil
}

// Initialize はレビューストアを用意する。CSV の場合はヘッダーのみのファイルを作成する。
func (s *Server) Initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.reviewRepo.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize %s review store: %w", s.storeBackend, err)
	}
	return nil
}

// Handler はミドルウェアとルーティングを組み立てた http.Handler を返す。
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		ReviewCommands: s.reviewCommands,
		Views:          s.views,
		FlashSecret:    s.flashSecret,
		CookieSecure:   s.cookieSecure,
		Location:       s.location,
	})
	publicHandler.Register(router)

	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:    s.logger,
		Dashboard: s.dashboard,
		Views:     s.views,
		Location:  s.location,
	})
	router.Route("/admin", adminHandler.Register)

	return router
}

// Run はストアを初期化してから HTTP サーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	if err := s.Initialize(context.Background()); err != nil {
		return err
	}
	s.logger.Printf("モデルのフォールバック順: %s", strings.Join(s.processor.Models(), " -> "))

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler はストアへの疎通を確認する。Mongo なら Ping、CSV ならファイルの存在を見る。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.checkStore(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"store":  s.storeBackend,
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"store":  s.storeBackend,
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

func (s *Server) checkStore(ctx context.Context) error {
	if s.storeBackend == config.StoreBackendMongo {
		return s.client.Ping(ctx, readpref.Primary())
	}
	_, err := os.Stat(s.csvPath)
	return err
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。CSV のみの場合は何もしない。
func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を行う。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
