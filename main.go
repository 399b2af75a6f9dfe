package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"kura/internal/config"
	"kura/internal/logging"
	"kura/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if err := logging.Setup(cfg.Log, os.Stdout); err != nil {
		logrus.Fatalf("ログの設定に失敗しました: %v", err)
	}

	// サーバーを作成
	srv, err := server.New(cfg)
	if err != nil {
		logrus.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		logrus.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}
