// Package tls 提供加密监听器/拨号所需的 TLS 配置与 keyprint 校验
//
// 证书是自签名的：每个进程启动时生成一张短期证书，TLS 握手本身不
// 承载任何身份语义。对端身份来自 hub（NMDC CID / ADC ID=），密码学
// 只用来防窃听和做一次 keyprint 比对（§4.5），不做证书链验证。
package tls
