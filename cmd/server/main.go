package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	edgesim "github.com/Ashenafi-pixel/house-edge-sim"
	"github.com/Ashenafi-pixel/house-edge-sim/config"
	"github.com/Ashenafi-pixel/house-edge-sim/logger"
	"github.com/Ashenafi-pixel/house-edge-sim/run"
	"github.com/Ashenafi-pixel/house-edge-sim/server"
)

func main() {
	// Load .env so DATABASE_URL is set: cwd .env or project root .env/.env.local
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../.env.local")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	db, err := edgesim.GetDB()
	if err != nil {
		zl.Fatal("connect db", zap.Error(err))
	}
	if db == nil {
		zl.Info("DATABASE_URL not set; storing runs under data dir", zap.String("data_dir", cfg.DataDir))
	}
	runs, err := run.Open(context.Background(), db, cfg.DataDir)
	if err != nil {
		zl.Fatal("open run store", zap.Error(err))
	}

	srv := server.New(cfg, zl, runs)
	if err := srv.Run(); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
