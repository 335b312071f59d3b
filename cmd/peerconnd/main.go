// Package main 提供 peerconnd 命令行入口：独立运行连接管理器，
// 不依赖 Host/Swarm/DHT 等其余节点子系统。
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/peerconnd/config"
	"github.com/dep2p/peerconnd/internal/core/connmgr"
	"github.com/dep2p/peerconnd/internal/core/eventbus"
	"github.com/dep2p/peerconnd/pkg/lib/log"
)

var logger = log.Logger("peerconnd/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	tcpPort        = flag.Int("port", 412, "明文监听端口")
	tlsPort        = flag.Int("tls-port", 413, "加密监听端口（0 表示不启动）")
	bindAddress    = flag.String("bind", "", "监听绑定地址，空字符串表示所有接口")
	selfNick       = flag.String("nick", "", "ADC 自身身份种子（CINF 的 ID=）")
	downConnPerSec = flag.Int("down-conn-per-sec", 2, "每秒允许发起的下载连接数，0 表示不限")
	compress       = flag.Bool("compress", true, "握手中是否广告 ZLIB-GET / ZLIG")
	allowUntrusted = flag.Bool("allow-untrusted", false, "是否允许未受信任的 TLS 叶证书通过")
	enableLastIP   = flag.Bool("enable-last-ip", true, "角色分配后是否持久化用户最后已知 IP")
	logLevel       = flag.String("log", "info", "日志级别：debug/info/warn/error")
	showVersion    = flag.Bool("version", false, "打印版本号并退出")
)

const version = "0.1.0"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("peerconnd", version)
		return
	}

	if err := applyLogLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := buildConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(cfg),
		eventbus.Module(),
		connmgr.Module(),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		logger.Error("启动失败", "error", err)
		os.Exit(1)
	}

	logger.Info("peerconnd 已启动",
		"tcpPort", cfg.ConnMgr.TCPPort,
		"tlsPort", cfg.ConnMgr.TLSPort)

	waitForSignal()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("停止时出错", "error", err)
	}
}

// buildConfig 将命令行参数折叠进统一配置的 ConnMgr 分区；其余分区保持默认值，
// 因为 peerconnd 只加载 connmgr 模块，不消费它们。
func buildConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.ConnMgr.TCPPort = *tcpPort
	cfg.ConnMgr.TLSPort = *tlsPort
	cfg.ConnMgr.BindAddress = *bindAddress
	cfg.ConnMgr.SelfNick = *selfNick
	cfg.ConnMgr.DownConnPerSec = *downConnPerSec
	cfg.ConnMgr.CompressTransfers = *compress
	cfg.ConnMgr.AllowUntrustedClients = *allowUntrusted
	cfg.ConnMgr.EnableLastIP = *enableLastIP
	return cfg
}

func applyLogLevel(level string) error {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	log.SetLevel(l)
	return nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("收到退出信号，开始关闭")
}
