package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/handler"
	"github.com/SaeedAdam/MoviePro/internal/middleware"
	"github.com/SaeedAdam/MoviePro/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Pages 所有页面模板名（不含 .html）
var Pages = []string{
	"home", "library", "movie_details", "actor_details",
	"import", "movie_form", "movie_delete",
	"collections", "collection_form", "collection_delete", "movie_collections",
	"login", "404", "error",
}

// NewEngine 组装中间件与路由，模板由调用方设置
func NewEngine(cfg *config.Config, h *handler.Handler) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 天
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("moviepro", store))
	r.Use(middleware.OptionalAuth(cfg.AppSecret))

	// 表单 32MB 以内留在内存
	r.MaxMultipartMemory = 32 << 20

	if err := handler.RegisterValidators(); err != nil {
		panic(err)
	}
	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	r.GET("/health", h.Health)

	// ==================== 公开页面 ====================
	r.GET("/", h.Home)
	r.GET("/movies/library", h.Library)
	r.GET("/movies/:id/details", h.MovieDetails)
	r.GET("/movies/:id/poster", h.MovieImage("poster"))
	r.GET("/movies/:id/backdrop", h.MovieImage("backdrop"))
	r.GET("/actors/:id", h.ActorDetails)
	r.GET("/collections", h.Collections)

	// ==================== 认证 ====================
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// ==================== JSON API ====================
	api := r.Group("/api")
	{
		api.GET("/movies/search", h.APISearch)
		api.GET("/movies/:id", h.APIMovie)
		api.GET("/collections", h.APICollections)
	}

	// ==================== 管理（需要管理员）====================
	manage := r.Group("")
	manage.Use(middleware.RequireAuth(h.Config.AppSecret))
	manage.Use(middleware.RequireAdmin(h.Config.DefaultCredentials.Role))
	{
		manage.GET("/movies/import", h.ImportPage)
		manage.POST("/movies/import/:id", h.ImportMovie)

		manage.GET("/movies/create", h.CreateMoviePage)
		manage.POST("/movies/create", h.CreateMovie)
		manage.GET("/movies/:id/edit", h.EditMoviePage)
		manage.POST("/movies/:id/edit", h.EditMovie)
		manage.GET("/movies/:id/delete", h.DeleteMoviePage)
		manage.POST("/movies/:id/delete", h.DeleteMovie)

		manage.POST("/collections/create", h.CreateCollection)
		manage.GET("/collections/:id/edit", h.EditCollectionPage)
		manage.POST("/collections/:id/edit", h.EditCollection)
		manage.GET("/collections/:id/delete", h.DeleteCollectionPage)
		manage.POST("/collections/:id/delete", h.DeleteCollection)

		manage.GET("/movie-collections", h.MovieCollections)
		manage.POST("/movie-collections", h.SaveMovieCollections)
	}
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		// data URI 是已编码内容，直接作为 URL 输出
		"imageSrc": func(data []byte, contentType string) template.URL {
			return template.URL(service.DecodeImage(data, contentType))
		},
		"formatDate": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"add": func(a, b int) int { return a + b },
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	funcMap := FuncMap()
	for _, page := range Pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
