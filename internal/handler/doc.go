// Package handler 按业务模块划分的 HTTP 处理器，实际实现位于各子包。
//
// 子包统一暴露 NewHandler 与 RegisterRoutes，由 cmd/api-gateway 挂载到 /api/v1。
// swag 生成文档时以本目录为扫描根。
package handler
