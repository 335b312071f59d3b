package tcp

import "errors"

var (
	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("tcp: listener closed")

	// ErrAcceptTimeout wait(POLL_TIMEOUT) 内没有新连接到达
	ErrAcceptTimeout = errors.New("tcp: accept poll timeout")

	// ErrDialTimeout 出站 connect 超时
	ErrDialTimeout = errors.New("tcp: dial timeout")
)
