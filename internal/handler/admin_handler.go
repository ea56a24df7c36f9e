package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionOwnerKey = "owner"

// OwnerCredentials 描述作品集主人的登录凭据。PasswordHash 为空时不启用鉴权。
type OwnerCredentials struct {
	Username     string
	PasswordHash []byte
}

// NewOwnerCredentials prefers a ready bcrypt hash and otherwise hashes the
// plain password. Both empty disables owner authentication.
func NewOwnerCredentials(username, password, passwordHash string) (OwnerCredentials, error) {
	creds := OwnerCredentials{Username: strings.TrimSpace(username)}
	if creds.Username == "" {
		creds.Username = "owner"
	}

	if hash := strings.TrimSpace(passwordHash); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return creds, fmt.Errorf("invalid owner password hash: %w", err)
		}
		creds.PasswordHash = []byte(hash)
		return creds, nil
	}

	if password == "" {
		return creds, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return creds, fmt.Errorf("hash owner password: %w", err)
	}
	creds.PasswordHash = hash
	return creds, nil
}

// Enabled reports whether mutating routes require a login.
func (o OwnerCredentials) Enabled() bool {
	return len(o.PasswordHash) > 0
}

func (o OwnerCredentials) verify(username, password string) bool {
	if !o.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(o.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(o.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 校验主人凭据并建立会话
func (a *API) Login(c *gin.Context) {
	if !a.owner.Enabled() {
		respondError(c, http.StatusNotFound, "未启用登录")
		return
	}

	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if !a.owner.verify(payload.Username, payload.Password) {
		a.logger.Warn("owner login failed", zap.String("client_ip", c.ClientIP()))
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionOwnerKey, true)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登录成功"})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// OwnerRequired guards mutating routes when owner authentication is enabled.
func (a *API) OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.isOwner(c) {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) isOwner(c *gin.Context) bool {
	if !a.owner.Enabled() {
		return true
	}
	owner, ok := sessions.Default(c).Get(sessionOwnerKey).(bool)
	return ok && owner
}
