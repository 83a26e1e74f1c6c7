// Package mailer 通过 SMTP 发送带附件的邮件
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"
)

// Attachment 邮件附件
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Message 邮件内容
type Message struct {
	To          string
	Subject     string
	Text        string
	Attachments []Attachment
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Config SMTP 配置
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer SMTP 邮件发送器
type SMTPMailer struct {
	cfg  Config
	addr string
}

// NewSMTPMailer 创建 SMTP 邮件发送器
func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}
}

// Send 发送邮件
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := build(m.cfg.From, msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

func build(from string, msg *Message) (*email.Email, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("mailer: empty recipient")
	}
	e := email.NewEmail()
	e.From = from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Content), a.FileName, a.ContentType); err != nil {
			return nil, fmt.Errorf("mailer: attach %s: %w", a.FileName, err)
		}
	}
	return e, nil
}

// Render 生成原始邮件内容（RFC 5322），用于预览和测试
func Render(from string, msg *Message) ([]byte, error) {
	e, err := build(from, msg)
	if err != nil {
		return nil, err
	}
	return e.Bytes()
}

// MockSender 内存邮件发送器（开发与测试）
type MockSender struct {
	mu   sync.Mutex
	Sent []*Message
	Err  error
}

// Send 记录邮件
func (s *MockSender) Send(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, msg)
	return nil
}
