// Command server runs the school provisioning service: credential identities,
// profiles, domain records, guardian links and the permission layer behind a
// single HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"scolara/internal/audit"
	"scolara/internal/credstore"
	"scolara/internal/guardian"
	"scolara/internal/jwttoken"
	"scolara/internal/permission"
	"scolara/internal/platform/config"
	"scolara/internal/platform/httpserver"
	"scolara/internal/platform/logger"
	"scolara/internal/platform/metrics"
	"scolara/internal/platform/redis"
	profileStore "scolara/internal/profile/store"
	"scolara/internal/provisioning"
	"scolara/internal/records"
	recordStore "scolara/internal/records/store"
	"scolara/internal/relationship"
	httptransport "scolara/internal/transport/http"
)

func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	// Stores. Without POSTGRES_URL everything runs in memory, which is how
	// local development and the test suites operate.
	var (
		creds     provisioningCredStore
		profiles  fullProfileStore
		recStore  records.CountingStore
		recFinder guardian.StudentFinder
		links     fullLinkStore
		overrides permission.OverrideStore
		db        *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		creds = credstore.NewPostgres(db)
		profiles = profileStore.NewPostgres(db)
		pg := recordStore.NewPostgres(db)
		recStore, recFinder = pg, pg
		links = relationship.NewPostgres(db)
		overrides = permission.NewPostgresOverrides(db)
		log.Info("using postgres stores")
	} else {
		creds = credstore.NewInMemory()
		profiles = profileStore.NewInMemory()
		mem := recordStore.NewInMemory()
		recStore, recFinder = mem, mem
		links = relationship.NewInMemory()
		overrides = permission.NewInMemoryOverrides()
		log.Warn("POSTGRES_URL not set, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		overrides = permission.NewCachedOverrides(overrides, redisClient.Client, config.OverrideCacheTTL)
		log.Info("permission override cache enabled")
	}

	// Audit pipeline: handlers and services emit into a bounded queue; the
	// worker drains it into Kafka when brokers are configured, otherwise
	// into the in-memory store.
	var auditBackend audit.Sink = audit.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		auditBackend = kafkaSink
		log.Info("audit events produced to kafka", "topic", cfg.AuditTopic)
	}
	queue := audit.NewChannelSink(1024)
	publisher := audit.NewPublisher(queue)
	worker := audit.NewWorker(auditBackend, queue.Events(), log)

	m := metrics.New()
	tokens := jwttoken.New(cfg.JWTSigningKey, cfg.JWTIssuer)
	resolver := permission.NewResolver(profiles, overrides,
		permission.WithLogger(log),
		permission.WithDeniedCounter(m.AuthorizationDenied))
	writer := records.NewWriter(recStore)
	service := provisioning.NewService(creds, profiles, writer, links, resolver,
		provisioning.WithLogger(log),
		provisioning.WithAuditPublisher(publisher),
		provisioning.WithMetrics(m))
	linker := guardian.NewLinker(recFinder, links, profiles)

	router := httptransport.NewRouter(
		tokens,
		httptransport.NewAuthHandler(creds, profiles, tokens, cfg.TokenTTL, log),
		httptransport.NewProvisionHandler(service, log),
		httptransport.NewGuardianHandler(linker, resolver, log),
		httptransport.NewOverrideHandler(overrides, resolver, publisher, log),
		log,
	).WithHealth(func(r chi.Router) {
		r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
			if db != nil {
				if err := db.PingContext(req.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(req.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	srv := httpserver.New(cfg.Addr, router.Handler())

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// provisioningCredStore is the union of what the provisioning service and the
// login handler need from the credential store.
type provisioningCredStore interface {
	provisioning.CredentialStore
	httptransport.Authenticator
}

// fullProfileStore serves the provisioning flows, the permission resolver and
// the guardian linker from one handle.
type fullProfileStore interface {
	provisioning.ProfileStore
	permission.ProfileReader
	guardian.ProfileReader
}

// fullLinkStore serves both the provisioning writes and the linker reads.
type fullLinkStore interface {
	provisioning.LinkStore
	guardian.LinkReader
}
