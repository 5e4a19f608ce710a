package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/service"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/gin-gonic/gin"
)

// APISearch 远程分类列表
// GET /api/movies/search?category=popular&count=16
func (h *Handler) APISearch(c *gin.Context) {
	category, ok := tmdb.ParseCategory(c.Query("category"))
	if !ok {
		utils.BadRequest(c, "unknown category")
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(service.LandingCount)))
	if err != nil || count < 0 {
		utils.BadRequest(c, "count must be a non-negative integer")
		return
	}

	results, err := h.Catalog.Search(c.Request.Context(), category, count)
	if err != nil {
		log.Printf("[API] 分类 %s 查询失败: %v", category, err)
		utils.BadGateway(c, "the movie database is unavailable")
		return
	}

	utils.Success(c, results)
}

// APIMovie 本地电影（含演职员）
// GET /api/movies/:id
func (h *Handler) APIMovie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		utils.NotFound(c, "")
		return
	}

	movie, err := h.Repos.Movie.FindWithCredits(id)
	if err != nil {
		log.Printf("[API] 查询电影失败 (ID: %d): %v", id, err)
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "")
		return
	}

	utils.Success(c, movie)
}

// APICollections 片单及其有序电影
// GET /api/collections
func (h *Handler) APICollections(c *gin.Context) {
	collections, err := h.Repos.Collection.ListWithMovies()
	if err != nil {
		log.Printf("[API] 查询片单失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, collections)
}

// MovieImage 输出库内保存的海报或背景图
// GET /movies/:id/poster, GET /movies/:id/backdrop
func (h *Handler) MovieImage(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}

		movie, err := h.Repos.Movie.FindByID(id)
		if err != nil {
			log.Printf("[Image] 查询电影失败 (ID: %d): %v", id, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		if movie == nil {
			c.Status(http.StatusNotFound)
			return
		}

		data, contentType := movie.Poster, movie.PosterType
		if kind == "backdrop" {
			data, contentType = movie.Backdrop, movie.BackdropType
		}
		if len(data) == 0 {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, service.DetectImageType(data, normalizeImageType(contentType)), data)
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.Repos.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		log.Printf("[Health] 数据库不可用: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// normalizeImageType "png" 补全为 "image/png"
func normalizeImageType(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	if strings.HasPrefix(contentType, "image/") {
		return contentType
	}
	return "image/" + contentType
}
