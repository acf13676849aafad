package router

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/pandu-nav/pandu/pkg/http/router/controllers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Config struct {
	Port    int
	Timeout time.Duration
}

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

func (api *API) Run(
	ctx context.Context,
	config Config,
	log *zap.Logger,

	useRateLimit bool,
	navigationService controllers.NavigationService,
) error {
	log.Info("Run httprouter API")

	router := httprouter.New()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	navigationRoutes := controllers.New(navigationService, log)
	navigationRoutes.Routes(router)

	router.GET("/ws", api.locationStream(navigationService))

	var mwChain []alice.Constructor
	if useRateLimit {
		mwChain = append(mwChain, corsHandler.Handler, api.recoverPanic,
			Heartbeat("healthz"), Logger(api.log), Limit)
	} else {
		mwChain = append(mwChain, corsHandler.Handler, api.recoverPanic,
			Heartbeat("healthz"), Logger(api.log))
	}
	mainMwChain := alice.New(mwChain...).Then(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: mainMwChain,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	api.log.Info(fmt.Sprintf("navigation API run on port %d", config.Port))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
