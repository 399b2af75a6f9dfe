// Package logging はlogrusの標準ロガーを設定に従って初期化する。
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"kura/internal/config"
)

// Setup は標準ロガーのレベル、フォーマット、出力先を設定する
func Setup(cfg config.LogConfig, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("ログレベルの解析に失敗: %w", err)
	}

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	default:
		return fmt.Errorf("無効なログフォーマット: %q", cfg.Format)
	}

	logrus.SetLevel(level)
	logrus.SetOutput(out)
	return nil
}
