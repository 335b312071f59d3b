package config

import (
	"errors"
	"time"
)

// SecurityConfig TLS 监听器与 keyprint 策略配置
type SecurityConfig struct {
	// MinVersion 最小 TLS 版本，0x0304 = TLS 1.3
	MinVersion uint16 `json:"min_version,omitempty"`

	// CertValidityPeriod 自签名证书有效期
	CertValidityPeriod Duration `json:"cert_validity_period,omitempty"`

	// StrictKeyprint 不被任何代码读取：CheckKeyprint 对未知算法和空摘要
	// 始终按 §4.5 的"放行"处理，取值不影响行为
	StrictKeyprint bool `json:"strict_keyprint,omitempty"`

	// HandshakeTimeout TLS 握手超时。connmgr 不读取此值：出站握手受拨号
	// context 的超时约束，入站握手没有单独的超时
	HandshakeTimeout Duration `json:"handshake_timeout,omitempty"`
}

// DefaultSecurityConfig 返回默认安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MinVersion:          0x0304,
		CertValidityPeriod:  Duration(365 * 24 * time.Hour),
		StrictKeyprint:      false,
		HandshakeTimeout:    Duration(30 * time.Second),
	}
}

// Validate 验证安全配置
func (c SecurityConfig) Validate() error {
	if c.MinVersion != 0 && c.MinVersion < 0x0303 {
		return errors.New("tls min version must be at least TLS 1.2 (0x0303)")
	}
	if c.CertValidityPeriod <= 0 {
		return errors.New("cert validity period must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	return nil
}
