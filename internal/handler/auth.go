package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/middleware"
	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// LoginPage 登录页
func (h *Handler) LoginPage(c *gin.Context) {
	// 已登录直接跳回
	if middleware.CurrentUserID(c) > 0 {
		c.Redirect(http.StatusFound, safeRedirect(c.Query("redirect")))
		return
	}
	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":    "Log in - " + h.Config.SiteName,
		"Redirect": c.Query("redirect"),
	}))
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	redirect := safeRedirect(c.PostForm("redirect"))

	fail := func(status int, msg string) {
		c.HTML(status, "login.html", h.RenderData(c, gin.H{
			"Title":    "Log in - " + h.Config.SiteName,
			"Error":    msg,
			"Email":    email,
			"Redirect": redirect,
		}))
	}

	user, err := h.Repos.User.FindByEmail(email)
	if err != nil {
		log.Printf("[Auth] 查询用户失败: %v", err)
		fail(http.StatusInternalServerError, "Login failed, please try again.")
		return
	}
	if user == nil || !h.Repos.User.CheckPassword(user, password) {
		fail(http.StatusOK, "Invalid email or password.")
		return
	}

	token, err := middleware.IssueToken(middleware.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		log.Printf("[Auth] 生成 Token 失败: %v", err)
		fail(http.StatusInternalServerError, "Login failed, please try again.")
		return
	}
	c.SetCookie(middleware.TokenCookie, token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	// 保存 UserInfo 到 Session
	session := sessions.Default(c)
	session.Set("userinfo", model.SessionUser{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
	if err := session.Save(); err != nil {
		log.Printf("[Session] 保存失败: %v", err)
	}

	c.Redirect(http.StatusFound, redirect)
}

// Logout 退出登录
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("[Session] 保存失败: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// safeRedirect 只允许站内路径
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
