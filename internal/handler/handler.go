package handler

import (
	"encoding/gob"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/middleware"
	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
	"github.com/SaeedAdam/MoviePro/internal/service"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func init() {
	// 注册 Session 模型
	gob.Register(model.SessionUser{})
}

const (
	flashError   = "error"
	flashSuccess = "success"
)

// Handler HTTP 处理器
type Handler struct {
	Repos   *repository.Repositories
	Config  *config.Config
	Catalog *service.CatalogService
	Images  *service.ImageService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	httpClient := utils.NewHTTPClient()

	images := service.NewImageService(httpClient)
	remote := tmdb.NewClient(cfg.TMDB, httpClient)
	mapper := service.NewMapper(cfg.TMDB, images)

	return &Handler{
		Repos:   repos,
		Config:  cfg,
		Catalog: service.NewCatalogService(repos, remote, mapper),
		Images:  images,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"Path":     c.Request.URL.Path,
	}

	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}
	// 权限以 JWT 为准
	res["IsAdmin"] = middleware.HasRole(c, h.Config.DefaultCredentials.Role)

	// 取出一次性提示
	errs := session.Flashes(flashError)
	oks := session.Flashes(flashSuccess)
	if len(errs) > 0 || len(oks) > 0 {
		res["FlashErrors"] = errs
		res["FlashSuccess"] = oks
		if err := session.Save(); err != nil {
			log.Printf("[Session] 保存失败: %v", err)
		}
	}

	res["ActiveMenu"] = activeMenu(c.Request.URL.Path)

	for k, v := range data {
		res[k] = v
	}
	return res
}

// activeMenu 根据路径判断当前高亮菜单
func activeMenu(path string) string {
	switch {
	case path == "/":
		return "home"
	case strings.HasPrefix(path, "/movies/import"):
		return "import"
	case strings.HasPrefix(path, "/movies"):
		return "library"
	case strings.HasPrefix(path, "/collections"), strings.HasPrefix(path, "/movie-collections"):
		return "collections"
	default:
		return ""
	}
}

// flash 写入一次性提示，下一个页面展示
func (h *Handler) flash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	if err := session.Save(); err != nil {
		log.Printf("[Session] 保存失败: %v", err)
	}
}

// Home 首页：本地片单 + 远程分类
func (h *Handler) Home(c *gin.Context) {
	landing, err := h.Catalog.Landing(c.Request.Context(), service.LandingCount)
	if err != nil {
		log.Printf("[Home] 加载首页失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the catalog.")
		return
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":       h.Config.SiteName,
		"Collections": landing.Collections,
		"Categories":  landing.Categories,
	}))
}

// renderError 错误页
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	page := "error.html"
	if status == http.StatusNotFound {
		page = "404.html"
	}
	c.HTML(status, page, h.RenderData(c, gin.H{
		"Title":   http.StatusText(status) + " - " + h.Config.SiteName,
		"Status":  status,
		"Message": message,
	}))
}

// renderRemoteError 映射失败优先判断（图片 404 也算映射失败），其次远程 404 视为不存在
func (h *Handler) renderRemoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMapping):
		h.renderError(c, http.StatusBadGateway, "The movie database returned data that could not be read.")
	case utils.IsNotFound(err):
		h.renderError(c, http.StatusNotFound, "The movie database has no such record.")
	default:
		h.renderError(c, http.StatusBadGateway, "The movie database is unavailable.")
	}
}

// paramID 解析路由中的正整数 ID
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
