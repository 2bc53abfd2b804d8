package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"crystalrun/config"
	"crystalrun/leaderboard"
	"crystalrun/server"
)

// CrystalRun 入口：启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to TOML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			server.Log.Warnf("sentry init: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.StatsView != "" {
		// 必须在 statsview.New() 之前设置
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.StatsView))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	if cfg.ReplayDir != "" {
		if err := os.MkdirAll(cfg.ReplayDir, 0o755); err != nil {
			server.Log.Fatalf("replay dir: %v", err)
		}
	}

	rm := server.NewRoomManager(cfg, leaderboard.NewFileStore(cfg.Leaderboard))
	// 先预创建一个默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(server.DefaultRoom)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rm.HandleWS)
	mux.HandleFunc("/leaderboard", rm.HandleLeaderboard)
	mux.HandleFunc("/leaderboard/online", rm.HandleOnline)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", rm.HandleAdminConfig)
	mux.HandleFunc("/metrics", rm.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("CrystalRun listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	rm.Stop()
}
