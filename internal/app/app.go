package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/httpapi"
	sqliteadapter "github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/usecase"
	"github.com/atvirokodosprendimai/labstore/migrations"
)

type Config struct {
	Addr             string
	DBPath           string
	BootstrapAPIKey  string
	BootstrapTenant  string
	BootstrapKeyName string
	ArchiveInterval  time.Duration
	AuditRetention   time.Duration
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	labRepo := sqliteadapter.NewLabRepository(db)
	sampleRepo := sqliteadapter.NewSampleRepository(db)
	paramRepo := sqliteadapter.NewParameterRepository(db)
	resultRepo := sqliteadapter.NewResultRepository(db)
	userRepo := sqliteadapter.NewUserRepository(db)
	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)
	schemaRepo := sqliteadapter.NewSchemaRepository(db)
	auditTrailRepo := sqliteadapter.NewAuditTrailRepository(db)
	store := sqliteadapter.NewStore(db)

	uow := usecase.NewUnitOfWork(store)
	schemaService := usecase.NewSchemaService(schemaRepo)
	labService := usecase.NewLabService(labRepo, uow)
	sampleService := usecase.NewSampleService(sampleRepo, labRepo, schemaService, uow)
	paramService := usecase.NewParameterService(paramRepo, uow)
	resultService := usecase.NewResultService(resultRepo, sampleRepo, paramRepo, schemaService, uow)
	userService := usecase.NewUserService(userRepo, uow)
	authService := usecase.NewAuthService(apiKeyRepo)
	auditService := usecase.NewAuditService(auditTrailRepo)

	interval := cfg.ArchiveInterval
	if interval <= 0 {
		interval = time.Hour
	}
	retention := cfg.AuditRetention
	if retention <= 0 {
		retention = usecase.DefaultAuditRetention
	}
	archiver := usecase.NewAuditArchiver(auditTrailRepo, interval, retention, 500)
	archiver.Start(context.Background())

	if cfg.BootstrapAPIKey != "" {
		tenant := cfg.BootstrapTenant
		if tenant == "" {
			tenant = "default"
		}
		name := cfg.BootstrapKeyName
		if name == "" {
			name = "bootstrap"
		}

		bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := apiKeyRepo.Upsert(bootstrapCtx, domain.APIKey{
			TokenHash: usecase.HashToken(cfg.BootstrapAPIKey),
			TenantID:  tenant,
			UserID:    domain.SystemActorID,
			Name:      name,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		})
		bootstrapCancel()
		if err != nil {
			_ = archiver.Close()
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap api key: %w", err)
		}
	}

	handler := httpapi.NewHandler(labService, sampleService, paramService, resultService, userService, schemaService, auditService, authService)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{archiver, db}}, nil
}
