package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie 管理员 JWT 所在的 Cookie 名
const TokenCookie = "token"

const identityKey = "moviepro.identity"

// Identity 当前请求的登录身份
type Identity struct {
	UserID int
	Email  string
	Role   string
}

// CatalogClaims 目录站登录令牌
type CatalogClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (cl *CatalogClaims) identity() Identity {
	return Identity{UserID: cl.UserID, Email: cl.Email, Role: cl.Role}
}

// IssueToken 为登录成功的用户签发令牌
func IssueToken(id Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CatalogClaims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth 管理页面必须登录；页面跳转登录页，表单提交返回 401
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseRequestToken(c, secret)
		if err != nil {
			if wantsPage(c) {
				c.Redirect(http.StatusFound, "/login?redirect="+url.QueryEscape(c.Request.URL.RequestURI()))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}

		c.Set(identityKey, claims.identity())
		renewIfStale(c, claims, secret)
		c.Next()
	}
}

// OptionalAuth 有令牌就识别身份，没有也放行
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseRequestToken(c, secret); err == nil {
			c.Set(identityKey, claims.identity())
		}
		c.Next()
	}
}

// RequireAdmin 只有指定角色可以维护目录
func RequireAdmin(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasRole(c, role) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CurrentIdentity 当前登录身份
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// CurrentUserID 未登录返回 0
func CurrentUserID(c *gin.Context) int {
	id, _ := CurrentIdentity(c)
	return id.UserID
}

// HasRole 空角色永远不匹配
func HasRole(c *gin.Context, role string) bool {
	id, ok := CurrentIdentity(c)
	return ok && role != "" && id.Role == role
}

func wantsPage(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet || strings.Contains(c.GetHeader("Accept"), "text/html")
}

// parseRequestToken Cookie 优先，其次 Authorization: Bearer
func parseRequestToken(c *gin.Context, secret string) (*CatalogClaims, error) {
	raw, err := c.Cookie(TokenCookie)
	if err != nil || raw == "" {
		raw = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == c.GetHeader("Authorization") {
			raw = ""
		}
	}
	if raw == "" {
		return nil, jwt.ErrTokenMalformed
	}

	claims := &CatalogClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// renewIfStale 有效期过半时换发新令牌
func renewIfStale(c *gin.Context, claims *CatalogClaims, secret string) {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if time.Since(claims.IssuedAt.Time) <= ttl/2 {
		return
	}
	if token, err := IssueToken(claims.identity(), secret, ttl); err == nil {
		c.SetCookie(TokenCookie, token, int(ttl.Seconds()), "/", "", false, true)
	}
}
