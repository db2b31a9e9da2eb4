package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(), Recovery(), CORS())
	if h.maxUploadSize > 0 {
		router.MaxMultipartMemory = h.maxUploadSize
	}

	router.GET("/", h.Root)
	router.POST("/upload-pdf/", h.UploadPDF)
	router.POST("/search/", h.Search)
	router.POST("/nutrition-recommendation/", h.NutritionRecommendation)
	return router
}

type Server struct {
	Engine *gin.Engine
	http   *http.Server
}

func NewServer(addr string, h *Handler) *Server {
	engine := NewRouter(h)
	return &Server{
		Engine: engine,
		http: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("Starting HTTP server")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
