package main

import (
	"net/http"

	"orderdesk/internal/config"
	"orderdesk/internal/db"
	"orderdesk/internal/httpapi"
	"orderdesk/internal/logger"
	"orderdesk/internal/order"
	"orderdesk/internal/product"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	runner := db.NewRunner(database)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo, runner)

	router := httpapi.NewRouter(productSvc, orderSvc)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
