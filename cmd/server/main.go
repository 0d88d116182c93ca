package main

import (
	"context"
	"net/http"
	"os"
	"slices"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	accountmodule "github.com/UmbertoV88/wedweaver/modules/account"
	"github.com/UmbertoV88/wedweaver/modules/billing"
	"github.com/UmbertoV88/wedweaver/pkg/authtoken"
	"github.com/UmbertoV88/wedweaver/pkg/config"
	"github.com/UmbertoV88/wedweaver/pkg/httpserver"
	"github.com/UmbertoV88/wedweaver/pkg/logger"
	"github.com/UmbertoV88/wedweaver/pkg/pg"
	"github.com/UmbertoV88/wedweaver/pkg/redis"
	"github.com/UmbertoV88/wedweaver/pkg/subscription"
	accountsvc "github.com/UmbertoV88/wedweaver/svc/account"
)

type appConfig struct {
	PlansPath string `env:"PLANS_PATH" envDefault:"plans.yaml"`
	SignInURL string `env:"SIGNIN_URL" envDefault:"/signin"`
	AppURL    string `env:"APP_URL" envDefault:"/app"`
}

func main() {
	ctx := context.Background()

	var (
		appCfg    appConfig
		logCfg    logger.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		tokenCfg  authtoken.Config
		stripeCfg subscription.StripeConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&tokenCfg)
	config.MustLoad(&stripeCfg)

	log := logger.New(logCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.ErrorContext(ctx, "failed to apply migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	gateway, err := subscription.NewStripeGateway(stripeCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to init billing gateway", "error", err)
		os.Exit(1)
	}

	store := subscription.NewPgStore(pool)
	feed := subscription.NewRedisFeed(redisClient, log)
	defer func() { _ = feed.Close() }()

	plansSource := subscription.NewYAMLPlansSource(appCfg.PlansPath)
	svc, err := subscription.NewService(ctx, plansSource, gateway, store,
		subscription.WithFeed(feed),
		subscription.WithLogger(log),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to init subscription service", "error", err)
		os.Exit(1)
	}

	catalog, err := plansSource.Load(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to load plan catalog", "error", err)
		os.Exit(1)
	}
	plans := make([]subscription.Plan, 0, len(catalog))
	for _, plan := range catalog {
		plans = append(plans, plan)
	}
	slices.SortFunc(plans, func(a, b subscription.Plan) int {
		return int(a.Price.Amount - b.Price.Amount)
	})

	tokens, err := authtoken.New(tokenCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to init token service", "error", err)
		os.Exit(1)
	}

	workflow := accountsvc.NewWorkflow(store, gateway, accountsvc.NewPgIdentityStore(pool), log)

	gate := subscription.PaywallGate(subscription.GateConfig{
		Service:   svc,
		Identity:  identityFromToken(tokens),
		SignInURL: appCfg.SignInURL,
		AppURL:    appCfg.AppURL,
		Logger:    log,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(log))
	r.Get("/readyz", httpserver.HealthHandler(log, pg.Healthcheck(pool), redis.Healthcheck(redisClient)))

	r.Mount("/billing", billing.Router(billing.RouterConfig{
		Service: svc,
		Plans:   plans,
		Auth:    authtoken.Middleware(tokens),
		Gate:    gate,
		Logger:  log,
	}))
	r.Mount("/account", accountmodule.Router(accountmodule.RouterConfig{
		Workflow: workflow,
		Auth:     authtoken.Middleware(tokens),
		Logger:   log,
	}))

	srv := httpserver.New(httpCfg, log)
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "http server exited with error", "error", err)
		os.Exit(1)
	}
}

// identityFromToken resolves the optional bearer identity for routes
// that are reachable both signed-in and anonymous.
func identityFromToken(tokens *authtoken.Service) subscription.IdentityFunc {
	return func(r *http.Request) (uuid.UUID, bool) {
		token := authtoken.BearerToken(r)
		if token == "" {
			return uuid.Nil, false
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			return uuid.Nil, false
		}
		userID, err := claims.UserID()
		if err != nil {
			return uuid.Nil, false
		}
		return userID, true
	}
}
