package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
	"github.com/Zachkp/devtier/internal/config"
)

type server struct {
	cfg        config.Config
	store      *Store
	adminToken string
	salt       string
	local      func() adaptive.Snapshot
}

func newServer(cfg config.Config, store *Store, local func() adaptive.Snapshot) (*server, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	salt, err := generateToken()
	if err != nil {
		return nil, err
	}
	return &server{cfg: cfg, store: store, adminToken: token, salt: salt, local: local}, nil
}

func (s *server) routes() *gin.Engine {
	r := gin.Default()

	s.setupAPIRoutes(r)
	s.setupAdminRoutes(r)

	// Everything else comes from the static export.
	files := http.FileServer(http.Dir(s.cfg.Server.SiteDir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
	return r
}

func main() {
	cfg, err := config.Load(os.Getenv("DEVTIER_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	capability.SetLogger(slog.Default())

	store, err := OpenStore(cfg.Store.Path)
	if err != nil {
		log.Fatal("Failed to open report store: ", err)
	}
	defer store.Close()

	local := sync.OnceValue(func() adaptive.Snapshot {
		return adaptive.NewSession().Detect(capability.NewNativeEnvironment(), cfg.Throttle)
	})
	s, err := newServer(cfg, store, local)
	if err != nil {
		log.Fatal("Failed to generate admin token: ", err)
	}

	log.Printf("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", s.adminToken)
		if cfg.UsesDefaultAdmin() {
			log.Println("WARNING: Using default admin credentials. Set ADMIN_USERNAME and ADMIN_PASSWORD.")
		}
	}
	log.Println("Privacy: reports are stored with hashed IP addresses, Do Not Track is honored")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.retentionLoop(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	log.Printf("Serving %s on :%s", cfg.Server.SiteDir, cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
