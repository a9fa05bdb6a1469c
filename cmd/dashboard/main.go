package main

import (
	"context"
	"log"

	"github.com/sngm3741/feedback-dashboard/internal/config"
	"github.com/sngm3741/feedback-dashboard/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("⚠️ %v", err)
	}

	var client *mongo.Client
	if cfg.StoreBackend == config.StoreBackendMongo {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err = mongo.Connect(ctx, clientOptions)
		if err != nil {
			cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
		}
	}

	app, err := server.New(cfg, client)
	if err != nil {
		cfg.ServerLog.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("サーバー起動に失敗: %v", err)
	}
}
