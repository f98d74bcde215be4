package container

import (
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/application/service"
	"github.com/ledgerline/expense-search/internal/domain/event"
	"github.com/ledgerline/expense-search/internal/domain/sections"
	"github.com/ledgerline/expense-search/internal/infrastructure/export"
	"github.com/ledgerline/expense-search/internal/infrastructure/persistence/repository"
	"github.com/ledgerline/expense-search/internal/infrastructure/persistence/sqlite"
	"github.com/ledgerline/expense-search/internal/infrastructure/storage"
	"github.com/ledgerline/expense-search/internal/infrastructure/worker"
	"github.com/ledgerline/expense-search/pkg/database"
	"github.com/ledgerline/expense-search/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	FileStorage   port.FileStorage
	FolderManager port.FolderManager
}

// ProvideDatabase opens the SQLite database, runs pending migrations and
// wraps the connection in a transaction manager.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MigrationsDir != "" {
		migrator := database.NewMigrator(sqlDB)
		if err := migrator.RunMigrations(cfg.MigrationsDir); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DatabaseBundle{
		SqlDB:          sqlDB,
		TransactionMgr: sqlite.NewDB(sqlDB, logger),
	}, nil
}

// ProvideRepositories creates all repositories over the shared connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Snapshot:    repository.NewSnapshotRepository(sqlDB, logger),
		SavedSearch: repository.NewSavedSearchRepository(sqlDB, logger),
		Recent:      repository.NewRecentSearchRepository(sqlDB, logger),
		Reference:   repository.NewReferenceDataRepository(sqlDB, logger),
	}, nil
}

// ProvideStorage creates the export file store over the output directory,
// creating the directory when it does not exist yet.
func ProvideStorage(cfg *ExportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	return &StorageBundle{
		FileStorage:   storage.NewLocalFileStorage(cfg.OutputDir, logger),
		FolderManager: storage.NewLocalFolderManager(cfg.OutputDir, logger),
	}, nil
}

// ProvideExporter creates the XLSX section exporter.
func ProvideExporter(storageBundle *StorageBundle, logger *zap.Logger) (port.SectionExporter, error) {
	if storageBundle == nil {
		return nil, fmt.Errorf("storage bundle is required")
	}

	return export.NewExcelExporter(storageBundle.FileStorage, storageBundle.FolderManager, logger), nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(logger))), nil
}

// ServiceDeps holds the dependencies the service layer needs.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Exporter   port.SectionExporter
	SearchCfg  *SearchConfig
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.SearchCfg == nil {
		return nil, fmt.Errorf("search config is required")
	}

	kvLogger := utils.NewKVLogger(deps.Logger)
	builder := sections.NewBuilder()

	searchService := service.NewSearchService(
		deps.Repos.Snapshot,
		deps.Repos.Reference,
		deps.TxManager,
		deps.Dispatcher,
		builder,
		deps.SearchCfg.SnapshotMaxAge,
		kvLogger,
	)

	return &ServiceBundle{
		Search:  searchService,
		Filters: service.NewFiltersService(deps.Repos.Reference, kvLogger),
		Saved:   service.NewSavedSearchService(deps.Repos.SavedSearch, deps.Dispatcher, kvLogger),
		Recent: service.NewRecentSearchService(
			deps.Repos.Recent,
			deps.Dispatcher,
			deps.SearchCfg.RecentMaxCount,
			deps.SearchCfg.RecentMaxAge,
			kvLogger,
		),
		Export: service.NewExportService(searchService, deps.Exporter, kvLogger),
	}, nil
}

// RegisterEventHandlers wires the dispatcher subscriptions that connect
// services to each other. Recording recent searches happens off the
// request path through the search.executed event.
func RegisterEventHandlers(disp dispatcher.Dispatcher, services *ServiceBundle) error {
	if disp == nil {
		return fmt.Errorf("dispatcher is required")
	}
	if services == nil {
		return fmt.Errorf("services are required")
	}

	disp.SubscribeNamed(event.TypeSearchExecuted, "recent-search-recorder", services.Recent.HandleSearchExecuted)
	return nil
}

// WorkerDeps holds the dependencies background workers need.
type WorkerDeps struct {
	Services  *ServiceBundle
	WorkerCfg *WorkerConfig
	Logger    *zap.Logger
}

// ProvideWorkers creates the worker manager with all workers registered.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, error) {
	if deps == nil {
		return nil, fmt.Errorf("worker dependencies are required")
	}
	if deps.Services == nil {
		return nil, fmt.Errorf("services are required")
	}
	if deps.WorkerCfg == nil {
		return nil, fmt.Errorf("worker config is required")
	}

	manager := worker.NewWorkerManager(deps.Logger)

	retention := worker.NewRetentionWorker(
		worker.RetentionWorkerConfig{Interval: deps.WorkerCfg.RetentionInterval},
		deps.Services.Search,
		deps.Services.Recent,
		deps.Logger,
	)
	manager.Register(retention)

	return manager, nil
}
