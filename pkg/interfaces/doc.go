// Package interfaces 定义连接管理器的外部协作者接口
//
// 本包只剩两类内容：
//
//   - eventbus.go       - 通用的订阅/发布契约（Added/Removed/
//                         StatusChanged/Failed/Connected 事件用它传递）
//   - collaborators.go  - 连接管理器之外的协作子系统（下载/上传管理器、
//                         hub 管理器、队列管理器、客户端管理器）的窄接口；
//                         这些子系统本身不在本模块实现范围内
//
// # 设计原则
//
// 本包仅包含纯接口定义；数据结构定义在 pkg/types 包中。连接管理器的
// 核心实现在 internal/core/connmgr 中，只通过这里的接口触达外部协作者，
// 从不直接依赖它们的实现包。
package interfaces
