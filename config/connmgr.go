package config

import (
	"errors"
	"time"
)

// ConnManagerConfig 连接管理配置
//
// 对应 §6 的"配置输入消费"：监听端口、下载重试预算，以及几个隐私/信任
// 开关。这些值经 ConfigFromUnified 读入 connmgr.Config。
type ConnManagerConfig struct {
	// TCPPort 明文监听端口
	TCPPort int `json:"tcp_port"`

	// TLSPort 加密监听端口。0 表示不启动安全监听器
	TLSPort int `json:"tls_port"`

	// BindAddress 监听绑定地址，空字符串表示所有接口
	BindAddress string `json:"bind_address,omitempty"`

	// SelfNick 本地客户端在 ADC CINF 的 ID= 字段中使用的身份种子；
	// 与 NMDC 侧按 (nick, hubUrl) 派生的每跳 CID 不同，ADC 的自身 CID
	// 跨 hub 保持稳定
	SelfNick string `json:"self_nick,omitempty"`

	// DownConnPerSec 每秒允许发起的下载连接数，0 表示不限
	DownConnPerSec int `json:"down_conn_per_sec"`

	// CompressTransfers 是否在握手中广告 ZLIB-GET / ZLIG 压缩能力
	CompressTransfers bool `json:"compress_transfers"`

	// AllowUntrustedClients 为真时 NewCoordinator 不生成自签名证书，此时
	// 不启动安全监听器，出站连接也不使用 TLS。无论取值如何，对端 TLS
	// 叶证书都不做信任校验
	AllowUntrustedClients bool `json:"allow_untrusted_clients"`

	// EnableLastIP 角色分配后是否持久化用户的最后已知 IP
	EnableLastIP bool `json:"enable_last_ip"`

	// GracePeriod 读入 connmgr.Config，但 1 分钟巡检不读取它：巡检只按
	// 180 秒无活动回收连接，新连接没有额外的保护期
	GracePeriod Duration `json:"grace_period,omitempty"`
}

// DefaultConnManagerConfig 返回默认连接管理配置
func DefaultConnManagerConfig() ConnManagerConfig {
	return ConnManagerConfig{
		TCPPort:               412,
		TLSPort:               412 + 1,
		BindAddress:           "",
		SelfNick:              "",
		DownConnPerSec:        2,
		CompressTransfers:     true,
		AllowUntrustedClients: false,
		EnableLastIP:          true,
		GracePeriod:           Duration(20 * time.Second),
	}
}

// Validate 验证连接管理配置
func (c ConnManagerConfig) Validate() error {
	if c.TCPPort <= 0 || c.TCPPort > 65535 {
		return errors.New("tcp port must be in (0, 65535]")
	}
	if c.TLSPort < 0 || c.TLSPort > 65535 {
		return errors.New("tls port must be in [0, 65535]")
	}
	if c.DownConnPerSec < 0 {
		return errors.New("down conn per sec must be non-negative")
	}
	if c.GracePeriod < 0 {
		return errors.New("grace period must be non-negative")
	}
	return nil
}

// WithPorts 设置明文/加密监听端口
func (c ConnManagerConfig) WithPorts(tcp, tls int) ConnManagerConfig {
	c.TCPPort = tcp
	c.TLSPort = tls
	return c
}
