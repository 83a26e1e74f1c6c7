// Package sms 通过阿里云短信发送预订通知
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v3/client"
	"github.com/alibabacloud-go/tea/tea"
)

const (
	// DefaultCountryCode 哥伦比亚
	DefaultCountryCode = "57"
	defaultEndpoint    = "dysmsapi.aliyuncs.com"
	// 哥伦比亚手机号为 10 位
	localNumberLen = 10
)

// Sender 模板短信发送
type Sender interface {
	Send(ctx context.Context, phone, templateCode string, params map[string]string) error
}

// Config 阿里云短信凭据
type Config struct {
	AccessKeyID     string
	AccessKeySecret string
	SignName        string
	Endpoint        string
}

type smsAPI interface {
	SendSms(request *dysmsapi.SendSmsRequest) (*dysmsapi.SendSmsResponse, error)
}

// AliyunSender 阿里云 dysmsapi 发送器
type AliyunSender struct {
	api      smsAPI
	signName string
}

// NewAliyunSender 创建发送器，Endpoint 为空时使用公网地址
func NewAliyunSender(cfg *Config) (*AliyunSender, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client, err := dysmsapi.NewClient(&openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("create dysmsapi client: %w", err)
	}
	return &AliyunSender{api: client, signName: cfg.SignName}, nil
}

// Send 发送模板短信，网关返回码不是 OK 时视为失败
func (s *AliyunSender) Send(ctx context.Context, phone, templateCode string, params map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	number := NormalizePhone(phone, DefaultCountryCode)
	if number == "" {
		return fmt.Errorf("sms: empty phone number")
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("sms: encode params: %w", err)
	}

	resp, err := s.api.SendSms(&dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(number),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(templateCode),
		TemplateParam: tea.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", number, err)
	}
	if resp == nil || resp.Body == nil {
		return fmt.Errorf("sms: empty gateway response")
	}
	if code := tea.StringValue(resp.Body.Code); code != "OK" {
		return fmt.Errorf("sms: gateway rejected %s: %s", code, tea.StringValue(resp.Body.Message))
	}
	return nil
}

// NormalizePhone 只保留数字，10 位本地号码补国家区号，带 + 的号码视为已含区号
func NormalizePhone(phone, countryCode string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	international := strings.HasPrefix(strings.TrimSpace(phone), "+")
	if digits != "" && !international && len(digits) == localNumberLen && countryCode != "" {
		return countryCode + digits
	}
	return digits
}
