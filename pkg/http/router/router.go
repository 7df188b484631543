package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/osmrouter/pkg/concurrent"
	"github.com/lintang-b-s/osmrouter/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/osmrouter/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/osmrouter/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	UseRateLimit   bool
	RateLimitRPS   float64
	RateLimitBurst int
	Registry       *prometheus.Registry
}

type API struct {
	log    *zap.Logger
	hub    *controllers.Hub
	poller netpoll.Poller
	pool   *concurrent.GoroutinePool
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			osmrouter API
//	@version		1.0
//	@description	Point to point routing over an OpenStreetMap road graph.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost:8080
// @BasePath	/api
func (api *API) Handler(config http_server.Config, routingService controllers.RoutingService, opts Options) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", REQUEST_ID_HEADER},
		ExposedHeaders:   []string{"Link", REQUEST_ID_HEADER},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)

	if opts.Registry != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	router.Handler(http.MethodGet, "/ws", api.upstream("route query websocket",
		&url.URL{Scheme: "http", Host: "localhost:" + strconv.Itoa(config.WebsocketPort)}))

	group := router_helper.NewRouteGroup(router, "/api")
	controllers.New(routingService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, api.recoverPanic, RealIP, Heartbeat("healthz"), RequestID,
		Logger(api.log)}
	if opts.Registry != nil {
		mwChain = append(mwChain, PromeHttpMiddleware(NewMetrics(opts.Registry), router))
	}
	mwChain = append(mwChain, EnforceJSONHandler)
	if opts.UseRateLimit {
		mwChain = append(mwChain, Limit(opts.RateLimitRPS, opts.RateLimitBurst))
	}
	return alice.New(mwChain...).Then(router)
}

// Run. serves the http api & the websocket listener until ctx is done or one of them fails.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	routingService controllers.RoutingService,
	opts Options,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(config, routingService, opts), config, false)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		api.log.Info(fmt.Sprintf("API run on port %d", config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return api.handleWebsocket(gctx, config, routingService)
	})

	g.Go(func() error {
		<-gctx.Done()
		api.log.Info("Context canceled, shutting down server")
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
