package tcp

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// Socket 是协调器持有的单个 TCP 端点，明文或 TLS 之下都是同一接口
//
// 与教师仓库里承载多路复用/多地址的 Connection 不同，这里只暴露
// UC（UserConnection）实际用到的面：读写、关闭、活动期限、是否加密。
type Socket interface {
	net.Conn
	// Secure 报告这个连接是否跑在 TLS 之上
	Secure() bool
	// PeerCertificates 返回对端叶证书的原始字节（仅 TLS 连接有效）
	PeerCertificates() [][]byte
}

type socket struct {
	net.Conn
	secure bool
}

func (s *socket) Secure() bool { return s.secure }

func (s *socket) PeerCertificates() [][]byte {
	tlsConn, ok := s.Conn.(*tls.Conn)
	if !ok {
		return nil
	}
	state := tlsConn.ConnectionState()
	raw := make([][]byte, len(state.PeerCertificates))
	for i, cert := range state.PeerCertificates {
		raw[i] = cert.Raw
	}
	return raw
}

func wrapPlain(c net.Conn) Socket {
	return &socket{Conn: c, secure: false}
}

func wrapSecure(c net.Conn) Socket {
	return &socket{Conn: c, secure: true}
}

// Dial 发起一次出站 TCP（或 TLS）连接，非阻塞语义由 ctx 的 deadline
// 体现：调用方通过 context.WithTimeout 控制 connect 的超时预算
//
// localPort 为 0 时使用系统分配的本地端口。
func Dial(ctx context.Context, network, addr string, localPort int, tlsConfig *tls.Config) (Socket, error) {
	dialer := &net.Dialer{}
	if localPort != 0 {
		dialer.LocalAddr = &net.TCPAddr{Port: localPort}
	}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	} else {
		dialer.Timeout = 30 * time.Second
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	if tlsConfig == nil {
		return wrapPlain(conn), nil
	}

	tlsConn := tls.Client(conn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return wrapSecure(tlsConn), nil
}
