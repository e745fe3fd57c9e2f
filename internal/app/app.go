package app

import (
	"database/sql"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/linemk/wolt-backend/internal/config"
	"github.com/linemk/wolt-backend/internal/service"
	"github.com/linemk/wolt-backend/internal/storage"
	"github.com/pkg/errors"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Services *Services
}

// NewApp создаёт новый экземпляр App
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	app := &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Services: NewServices(log, cfg, db),
	}

	return app, nil
}

// Services - все сервисы приложения, собранные поверх одного подключения к БД
type Services struct {
	Auth      service.AuthServiceInterface
	Users     service.UserServiceInterface
	Cart      service.CartServiceInterface
	Orders    service.OrderServiceInterface
	Catalog   service.CatalogServiceInterface
	Favorites service.FavoritesServiceInterface
}

func NewServices(log *slog.Logger, cfg *config.Config, db *sql.DB) *Services {
	// реализация слоев по работе с БД по каждому направлению
	txm := storage.NewTxManager(db)
	userRepo := storage.NewUserRepository(db)
	locRepo := storage.NewLocationRepository(db)
	bizRepo := storage.NewBusinessRepository(db)
	menuRepo := storage.NewMenuRepository(db)
	reviewRepo := storage.NewReviewRepository(db)
	favRepo := storage.NewFavoriteRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	itemRepo := storage.NewOrderItemRepository(db)

	return &Services{
		Auth:      service.NewAuthService(log, userRepo, cfg.JWT.TTL(), cfg.JWT.Secret),
		Users:     service.NewUserService(log, txm, userRepo, locRepo),
		Cart:      service.NewCartService(log, txm, userRepo, bizRepo, orderRepo, itemRepo, locRepo),
		Orders:    service.NewOrderService(log, txm, orderRepo, itemRepo, bizRepo),
		Catalog:   service.NewCatalogService(log, bizRepo, menuRepo, reviewRepo, orderRepo),
		Favorites: service.NewFavoritesService(log, favRepo),
	}
}
