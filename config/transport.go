package config

import (
	"errors"
	"time"
)

// TransportConfig TCP socket 参数
//
// §6 描述的传输面只有明文/加密 TCP 两种监听套接字；没有 QUIC、WebSocket
// 等多传输协商，故此配置只保留 TCP 相关的旋钮。
type TransportConfig struct {
	// DialTimeout 读入 connmgr.Config.DialTimeout；协调器的出站拨号不读取
	// 它，而是使用固定的 50 秒 connectTimeout
	DialTimeout Duration `json:"dial_timeout"`

	// PollTimeout Listener.wait 的轮询超时（§4.2 POLL_TIMEOUT）
	PollTimeout Duration `json:"poll_timeout"`

	// Backlog 监听队列长度。监听器不读取此值，总是使用系统默认值
	Backlog int `json:"backlog,omitempty"`

	// KeepAlive TCP keep-alive 开关。监听器不读取此值，对已接受的 socket
	// 总是启用 keep-alive
	KeepAlive bool `json:"keep_alive"`
}

// DefaultTransportConfig 返回默认传输层配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout: Duration(30 * time.Second),
		PollTimeout: Duration(250 * time.Millisecond),
		Backlog:     0,
		KeepAlive:   true,
	}
}

// Validate 验证传输层配置
func (c TransportConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("dial timeout must be positive")
	}
	if c.PollTimeout <= 0 {
		return errors.New("poll timeout must be positive")
	}
	if c.Backlog < 0 {
		return errors.New("backlog must be non-negative")
	}
	return nil
}
