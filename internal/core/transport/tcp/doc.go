// Package tcp 实现 §4.2 的 Socket/Tls 适配器：非阻塞的 TCP 监听/
// accept/connect，可选 TLS，轮询超时
//
// 没有多路复用、没有多地址格式、没有流升级——这不是一个通用传输层，
// 只是协调器用来接受和发起单个 DC 对等连接的最薄封装。
package tcp
