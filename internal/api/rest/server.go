package rest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HealthFunc проверяет, что хранилище отвечает.
type HealthFunc func(ctx context.Context) error

// NewRouter собирает маршруты API.
func NewRouter(h *RankingHandler, health HealthFunc, logger log.FieldLogger, rps rate.Limit, burst int) *gin.Engine {
	r := gin.New()
	r.Use(Logger(logger), gin.Recovery(), RateLimit(rps, burst))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.WithError(err).Warn("healthz: хранилище недоступно")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/guilds/:guild")
	api.GET("/top", h.Metrics)
	api.GET("/top/:metric", h.Top)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// Logger пишет каждый запрос в logrus.
func Logger(logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}).Debug("http")
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit ограничивает запросы с одного IP (token bucket).
// Записи старше 10 минут удаляются при обращениях.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		limiters  = map[string]*ipLimiter{}
		lastSweep = time.Now()
	)

	allow := func(ip string) bool {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > 5*time.Minute {
			cutoff := now.Add(-10 * time.Minute)
			for k, l := range limiters {
				if l.lastSeen.Before(cutoff) {
					delete(limiters, k)
				}
			}
			lastSweep = now
		}

		l, ok := limiters[ip]
		if !ok {
			l = &ipLimiter{limiter: rate.NewLimiter(r, b)}
			limiters[ip] = l
		}
		l.lastSeen = now
		return l.limiter.AllowN(now, 1)
	}

	return func(c *gin.Context) {
		if !allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Server — HTTP-сервер API с остановкой по контексту.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run слушает адрес до отмены ctx, затем даёт запросам 5 секунд на завершение.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.srv.Addr).Info("HTTP API запущен")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("HTTP API остановлен")
	return nil
}
