package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/avrebrov/roomcast/internal/adapters/ws"
	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/config"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator, streams *app.UpdateStreamer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	h := &Handlers{
		Coordinator:            coord,
		DefaultMaxParticipants: cfg.DefaultMaxParticipants,
		DefaultEmptyTimeout:    cfg.EmptyTimeout,
	}
	wsCtl := &ws.Controller{Streams: streams}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "roomcast coordination API",
			"status":    "active",
			"version":   "1.0.0",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/rooms/create", h.CreateRoom)
	r.GET("/rooms", h.ListRooms)
	r.GET("/rooms/:room_name", h.GetRoomInfo)
	r.DELETE("/rooms/:room_name", h.DeleteRoom)
	r.POST("/rooms/:room_name/join", h.JoinRoom)
	r.POST("/rooms/:room_name/participants/:identity/kick", h.KickParticipant)
	r.POST("/rooms/:room_name/participants/:identity/mute", h.MuteParticipant)

	r.GET("/ws/rooms/:room_name", func(c *gin.Context) {
		wsCtl.HandleRoomUpdates(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
