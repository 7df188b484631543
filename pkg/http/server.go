package http

import (
	"context"

	http_router "github.com/lintang-b-s/osmrouter/pkg/http/router"
	"github.com/lintang-b-s/osmrouter/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/osmrouter/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func SetDefaults() {
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT", false)
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)
}

// Use. blocks serving http & websocket until ctx is done.
func (s *Server) Use(
	ctx context.Context,
	routingService controllers.RoutingService,
	registry *prometheus.Registry,
) error {
	SetDefaults()

	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
	}

	api := http_router.NewAPI(s.Log)
	return api.Run(ctx, config, routingService, http_router.Options{
		UseRateLimit:   viper.GetBool("RATE_LIMIT"),
		RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
		Registry:       registry,
	})
}
