package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/convo"
	"github.com/stock-logistic/quoting-cli/internal/geo"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
	"github.com/stock-logistic/quoting-cli/internal/quote"
	"github.com/stock-logistic/quoting-cli/internal/store"
	anthropicpkg "github.com/stock-logistic/quoting-cli/pkg/anthropic"
	"github.com/stock-logistic/quoting-cli/pkg/openroute"
	"github.com/stock-logistic/quoting-cli/pkg/restrictions"
	sfpkg "github.com/stock-logistic/quoting-cli/pkg/salesforce"
	"github.com/stock-logistic/quoting-cli/pkg/tollguru"
)

// defaultRouteBurst matches the openroute client's built-in limiter burst.
const defaultRouteBurst = 4

// quoteEnv holds the initialized store, pricing engine, and conversation
// handler shared by the chat/serve commands.
type quoteEnv struct {
	Store   store.Store
	Engine  *pricing.Engine
	Builder *quote.Builder
	Handler *convo.Handler
}

// Close releases resources held by the environment.
func (qe *quoteEnv) Close() {
	if qe.Store != nil {
		_ = qe.Store.Close()
	}
}

// initEnv sets up the store, pricing collaborators, and conversation
// handler. Callers should defer env.Close().
func initEnv(ctx context.Context) (*quoteEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	engine := pricing.NewEngine(initEngineOptions()...)
	builder := quote.NewBuilder()

	var handlerOpts []convo.HandlerOption
	if cfg.Anthropic.Key != "" {
		assistant := anthropicpkg.NewAssistant(
			anthropicpkg.NewClient(cfg.Anthropic.Key),
			anthropicpkg.WithModel(cfg.Anthropic.Model),
			anthropicpkg.WithMaxTokens(cfg.Anthropic.MaxTokens),
			anthropicpkg.WithTemperature(cfg.Anthropic.Temperature),
		)
		handlerOpts = append(handlerOpts, convo.WithAssistant(assistant))
		zap.L().Info("assistant enabled", zap.String("model", cfg.Anthropic.Model))
	} else {
		zap.L().Debug("QUOTING_ANTHROPIC_KEY not set, using template replies")
	}

	return &quoteEnv{
		Store:   st,
		Engine:  engine,
		Builder: builder,
		Handler: convo.NewHandler(st, engine, builder, handlerOpts...),
	}, nil
}

// initEngineOptions wires the optional routing, toll, and restriction
// collaborators. Each one degrades to a deterministic fallback when not
// configured.
func initEngineOptions() []pricing.Option {
	var opts []pricing.Option

	if cfg.OpenRoute.Key != "" {
		client := openroute.NewClient(cfg.OpenRoute.Key,
			openroute.WithBaseURL(cfg.OpenRoute.BaseURL),
			openroute.WithRateLimit(cfg.OpenRoute.RateLimit, defaultRouteBurst),
		)
		var resolver openroute.CountryResolver
		if cfg.Geo.ShapefilePath != "" {
			r, err := geo.NewResolverFromShapefile(cfg.Geo.ShapefilePath, cfg.Geo.CodeField)
			if err != nil {
				zap.L().Warn("country shapefile load failed, transit countries fall back to destination",
					zap.String("path", cfg.Geo.ShapefilePath),
					zap.Error(err),
				)
			} else {
				resolver = r
			}
		}
		opts = append(opts, pricing.WithRouteService(openroute.NewRouteAdapter(client, resolver)))
		zap.L().Info("routing service enabled")
	}

	if cfg.TollGuru.Key != "" {
		client := tollguru.NewClient(cfg.TollGuru.Key, tollguru.WithBaseURL(cfg.TollGuru.BaseURL))
		opts = append(opts, pricing.WithTollService(tollguru.NewAdapter(client)))
		zap.L().Info("toll service enabled")
	}

	if cfg.Restrictions.BaseURL != "" {
		client := restrictions.NewClient(cfg.Restrictions.BaseURL, cfg.Restrictions.Key)
		opts = append(opts, pricing.WithRestrictionService(restrictions.NewAdapter(client)))
		zap.L().Info("restriction calendar enabled")
	}

	return opts
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "quoting.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (QUOTING_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
