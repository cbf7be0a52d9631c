package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/nikodp14/Panel-de-Operaciones/internal/config"
	"github.com/nikodp14/Panel-de-Operaciones/internal/server/handlers"
	"github.com/nikodp14/Panel-de-Operaciones/internal/store"
)

// Server es el servidor HTTP del panel. Agrupa el router, la base y la
// configuración; todo el estado compartido vive en el store.
type Server struct {
	engine *gin.Engine
	store  *store.Store
	cfg    *config.AppConfig
}

// New arma el servidor: abre la base SQLite dentro de dataDir, registra las
// rutas de la API y deja el router listo para Run.
func New(cfg *config.AppConfig, dataDir string) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.New(filepath.Join(dataDir, "panel.db"), filepath.Join(dataDir, "uploads"))
	if err != nil {
		return nil, fmt.Errorf("no se pudo inicializar el almacenamiento: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Server.DevMode {
		engine.Use(gin.Logger())
	}
	engine.Use(corsMiddleware())

	h := handlers.NewHandlers(st, cfg)
	api := engine.Group("/api")
	h.RegisterRoutes(api)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// En desarrollo el frontend corre aparte con su propio dev server.
	if cfg.Server.DevMode {
		engine.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	}

	return &Server{
		engine: engine,
		store:  st,
		cfg:    cfg,
	}, nil
}

// Run levanta el servidor en el puerto configurado. Bloquea.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	return s.engine.Run(addr)
}

// Close libera los recursos del servidor.
func (s *Server) Close() error {
	return s.store.Close()
}

// corsMiddleware permite el acceso desde el dev server del frontend. El panel
// es una herramienta local, no hay origen que restringir.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
