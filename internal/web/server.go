// Package web serves the operational HTTP endpoints: provider status
// and per-guild queue snapshots.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"musa/internal/logging"
	"musa/internal/music/player"
	"musa/internal/music/source_resolver"
	"musa/internal/version"
)

type Server struct {
	resolver *source_resolver.SourceResolver
	players  *player.Manager
}

func NewServer(resolver *source_resolver.SourceResolver, players *player.Manager) *Server {
	return &Server{resolver: resolver, players: players}
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)
	r.GET("/queue/:guild", s.handleQueue)
	return r
}

// Run serves until ctx is cancelled. Blocks; run in a goroutine.
func (s *Server) Run(ctx context.Context, addr string) {
	srv := &http.Server{Addr: addr, Handler: s.router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Event("status_server_started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		// Log, never crash the bot over the side server.
		logging.Error("status server exited", "error", err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":     version.AppName,
		"version": version.AppVersion,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	probeCtx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"services": s.resolver.Status(probeCtx),
		"guilds":   s.players.Guilds(),
	})
}

type queueEntry struct {
	Title    string `json:"title"`
	Service  string `json:"service"`
	Duration string `json:"duration"`
	Live     bool   `json:"live"`
}

func (s *Server) handleQueue(c *gin.Context) {
	guildID := c.Param("guild")
	p, ok := s.players.Peek(guildID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no player for guild"})
		return
	}

	queue := p.Queue()
	entries := make([]queueEntry, 0, len(queue))
	for _, song := range queue {
		entries = append(entries, queueEntry{
			Title:    song.Title,
			Service:  song.Service,
			Duration: song.Duration.String(),
			Live:     song.IsLiveStream,
		})
	}

	resp := gin.H{
		"state":      string(p.State()),
		"queue":      entries,
		"populating": p.PopulationRunning(),
	}
	if now, err := p.NowPlaying(); err == nil {
		resp["now_playing"] = queueEntry{
			Title:    now.Title,
			Service:  now.Service,
			Duration: now.Duration.String(),
			Live:     now.IsLiveStream,
		}
	}
	c.JSON(http.StatusOK, resp)
}
