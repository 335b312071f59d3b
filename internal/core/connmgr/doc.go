// Package connmgr 实现连接管理器的协调核心
//
// 这是整个模块最重的包，对应教师仓库 connmgr 的角色定位，但领域模型
// 完全不同：教师的 connmgr 是 libp2p 风格的"已建好的连接太多时裁剪哪些"
// (watermark/trim/tag)；这里是"请求一个到某用户的连接，并把它一路
// 握手到可以交给下载/上传子系统"。
//
// # 组成
//
//   - queue.go            - ConnectionQueueItem 及 downloads/uploads 两张表
//   - userconn.go          - UserConnection：角色/能力标志位、握手状态
//   - expected.go          - ExpectedConnections：nick -> (token, hubURL)
//   - nmdc_wire.go/adc_wire.go - 两种方言的报文编解码
//   - handshake_nmdc.go/handshake_adc.go - 状态机转移表
//   - dispatch.go          - 角色分派与失败处理（§4.4, §4.6）
//   - coordinator.go       - listen/getDownloadConnection/force/disconnect/
//                            shutdown，以及 1 Hz、1 分钟两条巡检线
//   - flood.go             - 入站 flood 与出站 IP-flood 防护
//   - events.go            - Added/Removed/StatusChanged/Failed/Connected
//   - metrics.go           - Prometheus 计数器/仪表
//   - module.go            - Fx 模块
//
// # 并发模型
//
// 单把协调器互斥锁 cs 保护 downloads、uploads、userConnections、
// expectedConnections、floodCounter、iConnToMeCount。拨号、CheckIdle、
// StartAdmission、RequestConnectTo 在释放锁之后进行；以下协作者调用则
// 在持锁期间发生：1 Hz 巡检中的 PriorityFor 与 NotifyConnectTimeout，
// nmdcMyNick 中的 IsOperator/IsStealth，以及角色分派时的 SetLastIP 与
// HandOff。1 Hz 巡检持锁收集的"待处理"列表在释放锁之后再逐一处理。
package connmgr
