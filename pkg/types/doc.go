// Package types 定义连接管理器使用的公共数据类型
//
// 本包只保留连接管理领域真正需要的类型：CID、UserRef/HintedUser。
// 握手方向等协议状态类型在 internal/core/connmgr 中。不包含节点身份、
// 多地址、DHT 等与本模块无关的类型。
package types
