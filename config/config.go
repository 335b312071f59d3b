// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.ConnMgr.TCPPort = 412
//	cfg.ConnMgr.EnableLastIP = true
package config

// Config 是连接管理器的完整配置结构
//
// 该结构体嵌入了所有组件的子配置，提供统一的配置接口。
type Config struct {
	// ConnMgr 连接管理配置（监听端口、重试预算、隐私选项）
	ConnMgr ConnManagerConfig `json:"conn_mgr"`

	// Security 安全传输配置（TLS 上下文、信任策略）
	Security SecurityConfig `json:"security"`

	// Transport 传输层配置（绑定地址、backlog）
	Transport TransportConfig `json:"transport"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		ConnMgr:   DefaultConnManagerConfig(),
		Security:  DefaultSecurityConfig(),
		Transport: DefaultTransportConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.ConnMgr.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	return nil
}
