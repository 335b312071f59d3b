// Package nmdclock 实现 NMDC 握手中 $Lock/$Pk/$Key 的挑战-应答算法
//
// 这是 NMDC 协议自带的、与 TLS 无关的一次性混淆，不提供任何现代
// 密码学强度保证——只是协议要求的一步。Lock 由发起方生成并随
// $Lock 命令发出，对端用 MakeKey 算出对应的 $Key 并回送。
package nmdclock
