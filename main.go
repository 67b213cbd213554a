package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	routeragent "github.com/tanpawarit/gift-concierge/agent/agents/router"
	"github.com/tanpawarit/gift-concierge/agent/catalog"
	"github.com/tanpawarit/gift-concierge/agent/registrar"
	"github.com/tanpawarit/gift-concierge/agent/search"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
	"github.com/tanpawarit/gift-concierge/agent/tool"
	"github.com/tanpawarit/gift-concierge/agent/transport"
	configx "github.com/tanpawarit/gift-concierge/pkg/config"
	"github.com/tanpawarit/gift-concierge/pkg/fabric"
	_ "github.com/tanpawarit/gift-concierge/pkg/logger/autoload"
	"github.com/tanpawarit/gift-concierge/pkg/paramstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogCfg := configx.MustNew[catalog.Config]("RAPIDAPI")
	searchCfg := configx.MustNew[search.Config]("")
	stateCfg := configx.MustNew[statex.Config]("")
	fabricCfg := configx.MustNew[fabric.Config]("SIGNALWIRE")
	registrarCfg := configx.MustNew[registrar.Config]("")
	transportCfg := configx.MustNew[transport.Config]("")
	paramCfg := configx.MustNew[paramstore.Config]("PARAM")

	if paramCfg.Enabled() {
		loadSecrets(ctx, paramCfg.Prefix, catalogCfg, fabricCfg)
	}

	engine := search.NewEngine(catalog.NewClient(*catalogCfg), *searchCfg)
	executor, err := tool.NewExecutor(engine, tool.WithNotifier(tool.LogNotifier{}))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool executor")
	}
	router, err := routeragent.New(statex.NewBagStore(statex.WithBagKey(stateCfg.BagKey)), executor)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool router")
	}

	registration := registrar.NewRegistration()
	var (
		tokens *registrar.TokenIssuer
		reg    *registrar.Registrar
	)
	if fabricCfg.Configured() {
		fabricClient, err := fabric.NewClient(*fabricCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build fabric client")
		}
		tokens = registrar.NewTokenIssuer(fabricClient, registration)
		reg, err = registrar.New(fabricClient, registration, *registrarCfg)
		if err != nil {
			log.Error().Err(err).Msg("swml handler registration disabled")
		}
	} else {
		log.Warn().Msg("SignalWire credentials not set, skipping swml handler registration")
		tokens = registrar.NewTokenIssuer(nil, registration)
	}

	handler, err := transport.NewHandler(*transportCfg, transport.Deps{
		Router:       router,
		Tokens:       tokens,
		Registration: registration,
		SpaceName:    fabricCfg.SpaceName,
		SpaceHost:    fabricCfg.Host(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http handler")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return transport.Serve(gctx, *transportCfg, handler)
	})
	if reg != nil {
		g.Go(func() error {
			// provisioning failure leaves the token endpoint erroring, not the server down
			_, _ = reg.Ensure(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func loadSecrets(ctx context.Context, prefix string, catalogCfg *catalog.Config, fabricCfg *fabric.Config) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load AWS config, skipping parameter store")
		return
	}
	store, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		log.Warn().Err(err).Msg("failed to create SSM client, skipping parameter store")
		return
	}
	err = paramstore.Fill(ctx, store, prefix,
		paramstore.Secret{Name: "rapidapi-key", Dest: &catalogCfg.Key},
		paramstore.Secret{Name: "signalwire-token", Dest: &fabricCfg.Token},
	)
	if err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("some secrets could not be loaded from parameter store")
	}
}
