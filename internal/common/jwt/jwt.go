// Package jwt 签发和校验员工会话令牌
package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 令牌类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// 前台终端与服务器之间允许的时钟偏差
const clockSkew = 30 * time.Second

// Claims 员工会话声明，角色在签发时固化，刷新时以员工档案为准
type Claims struct {
	EmployeeID int64  `json:"employee_id"`
	AuthID     string `json:"auth_id"`
	Role       string `json:"role"`
	TokenType  string `json:"token_type"`
	jwt.RegisteredClaims
}

// Config JWT 配置
type Config struct {
	Secret            string
	AccessExpireTime  time.Duration
	RefreshExpireTime time.Duration
	Issuer            string
}

// Manager HS256 令牌管理器
type Manager struct {
	config *Config
	parser *jwt.Parser
	now    func() time.Time
}

// TokenPair 登录或刷新返回的令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenType    = errors.New("unexpected token type")
)

// NewManager 创建令牌管理器，配置了 Issuer 时校验签发方
func NewManager(config *Config) *Manager {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &Manager{config: config, parser: jwt.NewParser(opts...), now: time.Now}
}

// GenerateTokenPair 为员工签发访问令牌和刷新令牌
func (m *Manager) GenerateTokenPair(employeeID int64, authID, role string) (*TokenPair, error) {
	now := m.now()
	accessExpireAt := now.Add(m.config.AccessExpireTime)

	access, err := m.sign(now, accessExpireAt, Claims{EmployeeID: employeeID, AuthID: authID, Role: role, TokenType: TokenTypeAccess})
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(now, now.Add(m.config.RefreshExpireTime), Claims{EmployeeID: employeeID, AuthID: authID, Role: role, TokenType: TokenTypeRefresh})
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExpireAt.Unix()}, nil
}

func (m *Manager) sign(now, expireAt time.Time, claims Claims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.config.Issuer,
		Subject:   strconv.FormatInt(claims.EmployeeID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expireAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(m.config.Secret))
}

// ParseAccessToken 校验访问令牌，刷新令牌返回 ErrTokenType
func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ParseRefreshToken 校验刷新令牌
func (m *Manager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh)
}

func (m *Manager) parse(token, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(m.config.Secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, ErrTokenInvalid
	case claims.EmployeeID <= 0:
		return nil, ErrTokenInvalid
	case claims.TokenType != tokenType:
		return nil, ErrTokenType
	}
	return claims, nil
}
