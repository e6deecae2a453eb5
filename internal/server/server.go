package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vitormoschetta/seguradora-chat/internal/config"
	"github.com/vitormoschetta/seguradora-chat/internal/gateway"
	"github.com/vitormoschetta/seguradora-chat/internal/provider"
	"github.com/vitormoschetta/seguradora-chat/internal/routing"
	"github.com/vitormoschetta/seguradora-chat/internal/service"
	"github.com/vitormoschetta/seguradora-chat/internal/store"
)

// Intervalo entre as varreduras de sessões ociosas
const janitorInterval = time.Minute

// ToolCatalog lista as ferramentas anunciadas pelo gateway
type ToolCatalog interface {
	Catalog(ctx context.Context) ([]gateway.RemoteTool, error)
}

// Routes são os handlers HTTP registrados no router
type Routes interface {
	HandleRoot(w http.ResponseWriter, r *http.Request)
	HandleHealth(w http.ResponseWriter, r *http.Request)
	HandleChat(w http.ResponseWriter, r *http.Request)
	HandleTools(w http.ResponseWriter, r *http.Request)
	HandleGetSession(w http.ResponseWriter, r *http.Request)
	HandleResetSession(w http.ResponseWriter, r *http.Request)
	HandleDeleteSession(w http.ResponseWriter, r *http.Request)
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// Server representa o servidor HTTP com todas as dependências
type Server struct {
	Config         *config.Config
	Assistant      *service.Assistant
	SessionManager *service.SessionManager
	Gateway        ToolCatalog
	Store          store.Store
	Router         chi.Router

	closers []func() error
}

// NewServer cria uma nova instância do servidor a partir da configuração
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.CheckSecrets(); err != nil {
		log.Printf("Warning: %v - chat turns will be refused until they are set", err)
	}

	// Cliente MCP com autenticação customizada
	gw := gateway.NewClient(gateway.Options{
		Endpoint:    cfg.MCPURL,
		Token:       cfg.MCPToken,
		TokenHeader: cfg.MCPTokenHeader,
		Timeout:     cfg.MCPTimeout,
	})

	llm := provider.New(cfg)
	log.Printf("🤖 Model provider: %s", llm.Name())

	sessions := service.NewSessionManager(st, cfg.HistoryLimit)
	go sessions.RunJanitor(ctx, janitorInterval, cfg.SessionTTL)
	assistant := service.NewAssistant(
		sessions,
		routing.NewSelector(cfg.ClaimMaxToolCalls, cfg.GeneralMaxToolCalls),
		llm,
		gw,
		gateway.Server{
			Label:         cfg.MCPLabel,
			Description:   cfg.MCPDescription,
			URL:           cfg.MCPURL,
			Authorization: cfg.MCPToken,
		},
		cfg.MissingSecrets,
	)

	s := &Server{
		Config:         cfg,
		Assistant:      assistant,
		SessionManager: sessions,
		Gateway:        gw,
		Store:          st,
		closers:        []func() error{gw.Close, st.Close},
	}

	return s, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		st, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		log.Printf("🗄️  Session store: redis (ttl %s)", cfg.SessionTTL)
		return st, nil
	default:
		log.Printf("🗄️  Session store: memory (ttl %s)", cfg.SessionTTL)
		return store.NewMemoryStore(cfg.SessionTTL), nil
	}
}

// SetupRouter configura as rotas e middlewares do Chi
func (s *Server) SetupRouter(h Routes) {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Rotas
	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealth)

	// WebSocket fica fora do timeout: a conexão dura a sessão inteira
	r.Get("/ws", h.HandleWebSocket)

	// API Routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Post("/chat", h.HandleChat)
		r.Get("/tools", h.HandleTools)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Post("/reset", h.HandleResetSession)
			r.Delete("/", h.HandleDeleteSession)
		})
	})

	s.Router = r
}

// Start inicia o servidor HTTP com graceful shutdown
func (s *Server) Start(ctx context.Context) {
	addr := ":8080"
	if s.Config != nil && s.Config.HTTPAddr != "" {
		addr = s.Config.HTTPAddr
	}

	// Configurar servidor HTTP com graceful shutdown
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Goroutine para iniciar o servidor
	go func() {
		log.Println("╔════════════════════════════════════════════════════╗")
		log.Println("║   Seguradora Chat - LLM + MCP Gateway             ║")
		log.Println("╚════════════════════════════════════════════════════╝")
		log.Println("")
		log.Printf("🚀 Servidor HTTP iniciado em %s", addr)
		log.Println("📦 Router: Chi v5")
		log.Println("")
		log.Println("📌 Endpoints disponíveis:")
		log.Println("   • Info:      / (GET)")
		log.Println("   • Health:    /health (GET)")
		log.Println("   • Chat API:  /api/chat (POST)")
		log.Println("   • Tools:     /api/tools (GET)")
		log.Println("   • Sessões:   /api/sessions/{id} (GET, DELETE), /api/sessions/{id}/reset (POST)")
		log.Println("   • Chat WS:   /ws?session_id=... (GET)")
		log.Println("")
		log.Println("💡 Exemplo de uso com curl:")
		log.Println(`   curl -X POST http://localhost:8080/api/chat \`)
		log.Println(`        -H "Content-Type: application/json" \`)
		log.Println(`        -d '{"message":"bati o carro, CPF 123.456.789-10"}'`)
		log.Println("")
		log.Println("⚠️  Pressione Ctrl+C para parar o servidor")
		log.Println("")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Aguardar sinal de interrupção
	<-ctx.Done()
	log.Println("\n🛑 Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
	}
	s.Close()
	log.Println("✅ Server stopped gracefully")
}

// Close libera gateway e store
func (s *Server) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("❌ Close error: %v", err)
		}
	}
	s.closers = nil
}
