package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"kura/internal/config"
	"kura/internal/static"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	files      *static.FileSystem
	engine     *gin.Engine
	httpServer *http.Server
	closeOnce  sync.Once
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config) (*Server, error) {
	files, err := static.NewFileSystem(cfg.Static.Root, cfg.Static.Index)
	if err != nil {
		return nil, fmt.Errorf("静的ファイルのルートを開けません: %w", err)
	}

	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		files:  files,
	}
	s.engine = s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false

	r.Use(requestID())
	r.Use(errorHandler())
	r.Use(recovery())

	// ヘルスチェックエンドポイント
	r.GET("/health", s.handleHealth)
	r.HEAD("/health", s.handleHealth)

	// ルートのインデックス
	r.GET("/", s.handleRoot)
	r.HEAD("/", s.handleRoot)

	// それ以外のパスはすべてファイルとして扱う
	r.NoRoute(s.handleFile)

	return r
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start は設定されたアドレスでリッスンし、サーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.closeFiles()
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve はlnでリクエストを受け付け、コンテキストのキャンセルか
// SIGINT/SIGTERMを受けるまでブロックする
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)

	// サーバーを別ゴルーチンで起動
	g.Go(func() error {
		logrus.WithField("root", s.files.Dir()).Infof("HTTPサーバーを起動しています: %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
		return nil
	})

	// コンテキストかシグナルを待つ
	g.Go(func() error {
		select {
		case <-gctx.Done():
			logrus.Info("コンテキストがキャンセルされました")
		case sig := <-sigCh:
			logrus.Infof("シグナルを受信しました: %v", sig)
		}

		// グレースフルシャットダウン
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	logrus.Info("サーバーをシャットダウンしています...")
	defer s.closeFiles()

	ctx := context.Background()
	if timeout := s.config.Server.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	logrus.Info("サーバーが正常にシャットダウンされました")
	return nil
}

// closeFiles はルートディレクトリのハンドルを一度だけ閉じる
func (s *Server) closeFiles() {
	s.closeOnce.Do(func() {
		if err := s.files.Close(); err != nil {
			logrus.WithError(err).Warn("ルートディレクトリのクローズに失敗しました")
		}
	})
}
