package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/go-chi/chi"
	"github.com/go-chi/docgen"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/fulfilment/api"
	"github.com/sksmith/fulfilment/config"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/location"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/db"
	"github.com/sksmith/fulfilment/db/catrepo"
	"github.com/sksmith/fulfilment/db/fulfilrepo"
	"github.com/sksmith/fulfilment/db/locrepo"
	"github.com/sksmith/fulfilment/db/memdb"
	"github.com/sksmith/fulfilment/db/whrepo"
	"github.com/sksmith/fulfilment/queue"
)

const shutdownTimeout = 10 * time.Second

var routes = flag.Bool("routes", false, "print the api routes as markdown and exit")

func main() {
	_ = godotenv.Load()
	flag.Parse()

	cfg := config.Load("config")

	configLogging(cfg)

	if *routes {
		r := api.ConfigureRouter(cfg, nil, nil, nil)
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/sksmith/fulfilment",
			Intro:       "Warehouse lifecycle and fulfilment assignment API.",
		}))
		return
	}

	printLogHeader(cfg)
	cfg.Print()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}
	defer app.Close()

	srv := &http.Server{Addr: ":" + cfg.Port.Value, Handler: app.router}
	go func() {
		log.Info().Str("port", cfg.Port.Value).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server cleanly")
	}
}

// application holds the wired router and whatever has to be released when
// the process stops.
type application struct {
	router  chi.Router
	closers []func()
}

// Close releases resources in the reverse order they were acquired.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type repositories struct {
	warehouses  warehouse.Repository
	assignments fulfilment.Repository
	catalog     catalog.Repository
	directory   location.Directory
}

type eventPublisher interface {
	warehouse.Queue
	fulfilment.Queue
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{}

	repos, err := configRepositories(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	events, catQueue := configQueues(ctx, cfg, app)

	log.Info().Msg("creating services...")
	whService := warehouse.NewService(repos.warehouses, repos.directory, events)
	fulService := fulfilment.NewService(repos.assignments, repos.catalog, repos.warehouses, events)
	catService := catalog.NewService(repos.catalog)

	if catQueue != nil {
		log.Info().Msg("consuming catalog updates...")
		go catQueue.Consume(ctx, catService)
	}

	log.Info().Msg("configuring router...")
	app.router = api.ConfigureRouter(cfg, whService, fulService, catService)

	return app, nil
}

func configRepositories(ctx context.Context, cfg *config.Config, app *application) (repositories, error) {
	if cfg.Db.InMemory.Value {
		log.Info().Msg("using the in-memory database")
		mem := memdb.New()
		return repositories{
			warehouses:  mem,
			assignments: mem,
			catalog:     mem,
			directory:   location.NewStaticDirectory(),
		}, nil
	}

	pool, err := db.ConnectDb(ctx, cfg)
	if err != nil {
		return repositories{}, errors.WithMessage(err, "failed to connect to the database")
	}
	app.closers = append(app.closers, pool.Close)

	return repositories{
		warehouses:  whrepo.NewPostgresRepo(pool),
		assignments: fulfilrepo.NewPostgresRepo(pool),
		catalog:     catrepo.NewPostgresRepo(pool),
		directory:   location.NewCachedDirectory(locrepo.NewPostgresRepo(pool), int(cfg.Locations.CacheSize.Value)),
	}, nil
}

func configQueues(ctx context.Context, cfg *config.Config, app *application) (eventPublisher, *queue.CatalogQueue) {
	if cfg.RabbitMQ.Mock.Value {
		log.Info().Msg("creating mock queue...")
		return queue.NewMockQueue(), nil
	}

	log.Info().Msg("connecting to rabbitmq...")
	bq := rabbit(ctx, cfg)
	publish := queue.BunnyPublisher(bq)

	events := queue.NewEventQueue(publish,
		cfg.RabbitMQ.Warehouse.Exchange.Value,
		cfg.RabbitMQ.Fulfilment.Exchange.Value,
		0)
	app.closers = append(app.closers, events.Close)

	catQueue := queue.NewCatalogQueue(queue.BunnyStreamer(bq), publish,
		cfg.RabbitMQ.Catalog.Queue.Value,
		cfg.RabbitMQ.Catalog.Dlt.Exchange.Value)

	return events, catQueue
}

func rabbit(ctx context.Context, cfg *config.Config) *bunnyq.BunnyQ {
	osChannel := make(chan os.Signal, 1)
	signal.Notify(osChannel, syscall.SIGTERM)

	return bunnyq.New(ctx,
		bunnyq.Address{
			User: cfg.RabbitMQ.User.Value,
			Pass: cfg.RabbitMQ.Pass.Value,
			Host: cfg.RabbitMQ.Host.Value,
			Port: cfg.RabbitMQ.Port.Value,
		},
		osChannel,
		bunnyq.LogHandler(logger{}),
	)
}

type logger struct {
}

func (l logger) Log(_ context.Context, level bunnyq.LogLevel, msg string, data map[string]interface{}) {
	var evt *zerolog.Event
	switch level {
	case bunnyq.LogLevelTrace:
		evt = log.Trace()
	case bunnyq.LogLevelDebug:
		evt = log.Debug()
	case bunnyq.LogLevelInfo:
		evt = log.Info()
	case bunnyq.LogLevelWarn:
		evt = log.Warn()
	case bunnyq.LogLevelError:
		evt = log.Error()
	default:
		evt = log.Info()
	}

	for k, v := range data {
		evt.Interface(k, v)
	}

	evt.Msg(msg)
}

func printLogHeader(cfg *config.Config) {
	if cfg.Log.Structured.Value {
		log.Info().Str("application", cfg.AppName.Value).
			Str("revision", cfg.Revision.Value).
			Str("version", cfg.AppVersion.Value).
			Str("sha1ver", cfg.Sha1Version.Value).
			Str("build-time", cfg.BuildTime.Value).
			Str("profile", cfg.Profile.Value).
			Str("config-source", cfg.Config.Source.Value).
			Str("config-branch", cfg.Config.Spring.Branch.Value).
			Bool("in-memory", cfg.Db.InMemory.Value).
			Send()
	} else {
		f := figure.NewFigure(cfg.AppName.Value, "", true)
		f.Print()

		log.Info().Msg("=============================================")
		log.Info().Msg(fmt.Sprintf("       Revision: %s", cfg.Revision.Value))
		log.Info().Msg(fmt.Sprintf("        Profile: %s", cfg.Profile.Value))
		log.Info().Msg(fmt.Sprintf("  Config Server: %s - %s", cfg.Config.Source.Value, cfg.Config.Spring.Branch.Value))
		log.Info().Msg(fmt.Sprintf("    Tag Version: %s", cfg.AppVersion.Value))
		log.Info().Msg(fmt.Sprintf("   Sha1 Version: %s", cfg.Sha1Version.Value))
		log.Info().Msg(fmt.Sprintf("     Build Time: %s", cfg.BuildTime.Value))
		log.Info().Msg(fmt.Sprintf("      In Memory: %t", cfg.Db.InMemory.Value))
		log.Info().Msg("=============================================")
	}
}

func configLogging(cfg *config.Config) {
	log.Info().Msg("configuring logging...")

	if !cfg.Log.Structured.Value {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(cfg.Log.Level.Value)
	if err != nil {
		log.Warn().Str("loglevel", cfg.Log.Level.Value).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	log.Info().Str("loglevel", level.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(level)
}
