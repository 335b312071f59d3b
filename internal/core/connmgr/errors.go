package connmgr

import "errors"

var (
	// ErrShuttingDown 协调器正在关闭，拒绝新的出站请求
	ErrShuttingDown = errors.New("connmgr: shutting down")

	// ErrUserOffline 用户不在线，无法解析
	ErrUserOffline = errors.New("connmgr: user offline")

	// ErrNoExpectedConnection 收到的 MyNick 在 ExpectedConnections 中找不到对应项
	ErrNoExpectedConnection = errors.New("connmgr: no expected connection for nick")

	// ErrFlooded 入站连接被 flood 防护拒绝
	ErrFlooded = errors.New("connmgr: rejected by flood guard")

	// ErrIPFlood 出站连接被 IP-flood 防护拒绝
	ErrIPFlood = errors.New("connmgr: rejected by ip flood guard")

	// ErrPortBlacklisted 目标端口在黑名单内（80、2501）
	ErrPortBlacklisted = errors.New("connmgr: destination port is blacklisted")

	// ErrProtocol 握手过程中遇到协议错误（粘滞，errors=-1）
	ErrProtocol = errors.New("connmgr: protocol error")

	// ErrKeyprintMismatch keyprint 比对失败
	ErrKeyprintMismatch = errors.New("connmgr: keyprint mismatch")

	// ErrNoSlots 下载子系统拒绝了准入
	ErrNoSlots = errors.New("connmgr: all download slots taken")

	// ErrTimeout 出站连接尝试超时
	ErrTimeout = errors.New("connmgr: connect timeout")
)
