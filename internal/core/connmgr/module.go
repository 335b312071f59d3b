package connmgr

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/peerconnd/config"
	pkgif "github.com/dep2p/peerconnd/pkg/interfaces"
)

// Params 是协调器的 Fx 依赖：事件总线必需；统一配置为 optional（缺省时
// ConfigFromUnified 使用默认值）；五个外部协作者（hub/队列/下载/上传/
// 客户端）均为 optional——未接入时协调器仍可构造，只是对应的回调会被跳过。
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Bus        pkgif.EventBus

	Hub      pkgif.HubManager      `optional:"true"`
	Queue    pkgif.QueueManager    `optional:"true"`
	Download pkgif.DownloadManager `optional:"true"`
	Upload   pkgif.UploadManager   `optional:"true"`
	Client   pkgif.ClientManager   `optional:"true"`
}

// Module 是 connmgr 的 Fx 模块
func Module() fx.Option {
	return fx.Module("connmgr",
		fx.Provide(ProvideCoordinator),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideCoordinator 根据统一配置与可选协作者构造 Coordinator
func ProvideCoordinator(p Params) (*Coordinator, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	return NewCoordinator(cfg, Deps{
		Bus:      p.Bus,
		Hub:      p.Hub,
		Queue:    p.Queue,
		Download: p.Download,
		Upload:   p.Upload,
		Client:   p.Client,
	})
}

// registerLifecycle 注册生命周期钩子：启动时绑定监听器并开始巡检线，
// 停止时执行 §4.1 描述的 shutdown 序列
func registerLifecycle(lc fx.Lifecycle, co *Coordinator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return co.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			co.Shutdown()
			return nil
		},
	})
}
