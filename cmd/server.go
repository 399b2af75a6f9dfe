// Package main はkuraサーバーコマンドの実装です
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kura/internal/config"
	"kura/internal/logging"
	"kura/internal/server"
)

// version はビルド時に -ldflags で上書きされる
var version = "dev"

// serveOptions はserveコマンドのオプション
type serveOptions struct {
	configPath string
	host       string
	port       int
	root       string
	logLevel   string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kura",
		Short:         "静的ファイルを配信するHTTPサーバー",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand(), newVersionCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "サーバーを起動する",
		Long:  "ルートディレクトリ配下のファイルと /health を配信するサーバーを起動します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runServe(cmd.Context(), opts); err != nil {
				logrus.Error(err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML設定ファイルのパス")
	flags.StringVar(&opts.host, "host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
	flags.IntVar(&opts.port, "port", 0, "サーバーのポート (デフォルト: 5000)")
	flags.StringVar(&opts.root, "root", "", "配信するルートディレクトリ (デフォルト: カレントディレクトリ)")
	flags.StringVar(&opts.logLevel, "log-level", "", "ログレベル (デフォルト: info)")

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "バージョンを表示する",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kura %s\n", version)
		},
	}
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := logging.Setup(cfg.Log, os.Stdout); err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	logrus.Infof("kura サーバーを起動します: %s", cfg.ServerAddress())
	return srv.Start(ctx)
}

// loadConfig は設定を読み込み、コマンドラインオプションで上書きする
func loadConfig(opts serveOptions) (*config.Config, error) {
	// 検証はコマンドラインオプションで上書きした後に一度だけ行う
	cfg, err := config.Read(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	// コマンドラインオプションで設定を上書き
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.root != "" {
		cfg.Static.Root = opts.root
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗しました: %w", err)
	}

	return cfg, nil
}
