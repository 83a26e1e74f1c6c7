// Package qrcode 生成住宿凭证上的二维码
package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// stayPrefix 前台扫码识别的前缀
const stayPrefix = "FRONTDESK"

// Generator 二维码生成器
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 边长（像素），不大于 0 时忽略
func WithSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

// WithHighRecovery 使用 25% 纠错，适合打印后容易折损的凭证
func WithHighRecovery() Option {
	return func(g *Generator) {
		g.level = qrcode.High
	}
}

// NewGenerator 默认 256 像素、15% 纠错
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{size: 256, level: qrcode.Medium}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PNG 将内容编码为 PNG
func (g *Generator) PNG(content string) ([]byte, error) {
	data, err := qrcode.Encode(content, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qrcode: %w", err)
	}
	return data, nil
}

// StayPNG 住宿二维码
func (g *Generator) StayPNG(hotelName string, orderNumber, stayID int64) ([]byte, error) {
	return g.PNG(StayContent(hotelName, orderNumber, stayID))
}

// StayContent 住宿二维码内容，酒店名中的分隔符会被替换
func StayContent(hotelName string, orderNumber, stayID int64) string {
	name := strings.ReplaceAll(hotelName, "|", "/")
	return fmt.Sprintf("%s|%s|%d|%d", stayPrefix, name, orderNumber, stayID)
}

// ParseStayContent 解析扫码内容，返回订单号和住宿 ID
func ParseStayContent(content string) (orderNumber, stayID int64, err error) {
	parts := strings.Split(content, "|")
	if len(parts) != 4 || parts[0] != stayPrefix {
		return 0, 0, fmt.Errorf("not a stay code: %q", content)
	}
	if _, err := fmt.Sscan(parts[2], &orderNumber); err != nil {
		return 0, 0, fmt.Errorf("order number: %w", err)
	}
	if _, err := fmt.Sscan(parts[3], &stayID); err != nil {
		return 0, 0, fmt.Errorf("stay id: %w", err)
	}
	return orderNumber, stayID, nil
}
