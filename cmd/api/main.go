package main

import (
	"context"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/realtime"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	if cfg.GoEnv == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.FoodItem{},
		&model.SizeOption{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusEvent{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	foodRepo := infraRepo.NewFoodItemGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	sizeRepo := infraRepo.NewSizeOptionGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	eventRepo := infraRepo.NewStatusEventGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//変更通知フィード。ブローカー未設定ならプロセス内で完結させる
	var feed realtime.Feed
	if cfg.RabbitURL != "" {
		rf, ferr := realtime.NewRabbitFeed(cfg.RabbitURL, "boki.changes")
		if ferr != nil {
			log.Fatal().Err(ferr).Msg("rabbitmq connect failed")
		}
		defer rf.Close()
		feed = rf
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, using in-process feed")
		feed = realtime.NewMemoryFeed()
	}

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	menuUC := usecase.NewMenuUsecase(foodRepo, categoryRepo, sizeRepo)
	cartUC := usecase.NewCartUsecase(foodRepo, sizeRepo, cartRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, txManager, feed, nil)

	tracker := usecase.NewOrderTracker(orderRepo, eventRepo, txManager, feed)
	if err := tracker.Subscribe(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("order tracker subscribe failed")
	}
	defer tracker.Close()

	//Handler生成
	refreshTTL := 30 * 24 * time.Hour

	h := server.Handlers{
		Menu:       handler.NewMenuHandler(menuUC),
		Auth:       handler.NewAuthHandler(cfg, authUC, refreshTTL),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC, cartUC),
		AdminMenu:  handler.NewAdminMenuHandler(menuUC),
		AdminOrder: handler.NewAdminOrderHandler(tracker),
		AdminUser:  handler.NewAdminUserHandler(cfg, userRepo, authUC),
	}

	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, userRepo, h)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("api starting")
	if err := server.Start(e, addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
