package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
	"github.com/SaeedAdam/MoviePro/internal/service"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/gin-gonic/gin"
)

var errUnknownCollection = errors.New("unknown collection")

// movieForm 新建/编辑电影表单
type movieForm struct {
	ID           int       `form:"id"`
	Version      int       `form:"version"`
	Title        string    `form:"title" binding:"required,max=255"`
	Tagline      string    `form:"tagline" binding:"max=500"`
	Overview     string    `form:"overview" binding:"max=5000"`
	Runtime      int       `form:"runtime" binding:"gte=0,lte=1000"`
	ReleaseDate  time.Time `form:"release_date" time_format:"2006-01-02" time_utc:"1"`
	Rating       string    `form:"rating" binding:"omitempty,rating"`
	VoteAverage  float64   `form:"vote_average" binding:"gte=0,lte=10"`
	TrailerURL   string    `form:"trailer_url" binding:"omitempty,url"`
	CollectionID int       `form:"collection_id"`
}

func formFromMovie(m *model.Movie) *movieForm {
	return &movieForm{
		ID:          m.ID,
		Version:     m.Version,
		Title:       m.Title,
		Tagline:     m.Tagline,
		Overview:    m.Overview,
		Runtime:     m.Runtime,
		ReleaseDate: m.ReleaseDate,
		Rating:      string(m.Rating),
		VoteAverage: m.VoteAverage,
		TrailerURL:  m.TrailerURL,
	}
}

func (f *movieForm) toModel() *model.Movie {
	rating, ok := model.ParseRating(f.Rating)
	if !ok {
		rating = model.RatingNR
	}
	return &model.Movie{
		ID:          f.ID,
		Version:     f.Version,
		Title:       utils.CleanLine(f.Title),
		Tagline:     utils.CleanLine(f.Tagline),
		Overview:    utils.StripTags(f.Overview),
		Runtime:     f.Runtime,
		ReleaseDate: f.ReleaseDate,
		Rating:      rating,
		VoteAverage: f.VoteAverage,
		TrailerURL:  f.TrailerURL,
	}
}

// ==================== 浏览 ====================

// Library 本地片库
func (h *Handler) Library(c *gin.Context) {
	movies, err := h.Repos.Movie.ListAll()
	if err != nil {
		log.Printf("[Library] 查询失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the library.")
		return
	}

	c.HTML(http.StatusOK, "library.html", h.RenderData(c, gin.H{
		"Title":  "Library - " + h.Config.SiteName,
		"Movies": movies,
	}))
}

// MovieDetails local=true 读本地记录（ID 为本地 ID），否则实时拉取 TMDB（ID 为 TMDB ID）
func (h *Handler) MovieDetails(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}
	local, _ := strconv.ParseBool(c.DefaultQuery("local", "false"))

	var movie *model.Movie
	var err error
	if local {
		movie, err = h.Repos.Movie.FindWithCredits(id)
		if err != nil {
			h.renderError(c, http.StatusInternalServerError, "Unable to load the movie.")
			return
		}
		if movie == nil {
			h.renderError(c, http.StatusNotFound, "Movie not found.")
			return
		}
	} else {
		movie, err = h.Catalog.RemoteDetails(c.Request.Context(), id)
		if err != nil {
			h.renderRemoteError(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "movie_details.html", h.RenderData(c, gin.H{
		"Title": movie.Title + " - " + h.Config.SiteName,
		"Movie": movie,
		"Local": local,
	}))
}

// ==================== 导入 ====================

// ImportPage 浏览 TMDB 分类并导入
func (h *Handler) ImportPage(c *gin.Context) {
	category, ok := tmdb.ParseCategory(c.DefaultQuery("category", string(tmdb.Popular)))
	if !ok {
		category = tmdb.Popular
	}

	data := gin.H{
		"Title":      "Import - " + h.Config.SiteName,
		"Categories": tmdb.Categories,
		"Category":   category,
	}

	results, err := h.Catalog.Search(c.Request.Context(), category, 0)
	if err != nil {
		data["Error"] = "The movie database is unavailable."
	}
	data["Results"] = results

	movies, err := h.Repos.Movie.ListAll()
	if err != nil {
		log.Printf("[Import] 查询片库失败: %v", err)
	}
	data["Movies"] = movies

	c.HTML(http.StatusOK, "import.html", h.RenderData(c, data))
}

// ImportMovie 导入 TMDB 电影；已导入的直接跳到本地详情
func (h *Handler) ImportMovie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}

	result, err := h.Catalog.Import(c.Request.Context(), id)
	if err != nil {
		log.Printf("[Import] 导入 TMDB %d 失败: %v", id, err)
		msg := "Import failed: the movie database is unavailable."
		switch {
		case errors.Is(err, service.ErrMapping):
			msg = "Import failed: the movie data could not be read."
		case utils.IsNotFound(err):
			msg = "Import failed: the movie database has no such movie."
		}
		h.flash(c, flashError, msg)
		c.Redirect(http.StatusFound, "/movies/import")
		return
	}

	if result.Existing {
		c.Redirect(http.StatusFound, fmt.Sprintf("/movies/%d/details?local=true", result.Movie.ID))
		return
	}

	h.flash(c, flashSuccess, fmt.Sprintf("Imported %q.", result.Movie.Title))
	c.Redirect(http.StatusFound, "/movies/import")
}

// ==================== 新建 / 编辑 / 删除 ====================

// CreateMoviePage 新建电影表单
func (h *Handler) CreateMoviePage(c *gin.Context) {
	h.renderMovieForm(c, http.StatusOK, &movieForm{Rating: string(model.RatingNR)}, "")
}

// CreateMovie 手工新建电影并加入片单
func (h *Handler) CreateMovie(c *gin.Context) {
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, validationMessage(err))
		return
	}

	collectionID, err := h.resolveCollectionID(form.CollectionID)
	if errors.Is(err, errUnknownCollection) {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "The selected collection does not exist.")
		return
	}
	if err != nil {
		log.Printf("[Movie] 查询片单失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the movie.")
		return
	}

	movie := form.toModel()
	movie.ID = 0
	if movie.Title == "" {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "Title is required.")
		return
	}
	if movie.Poster, movie.PosterType, err = h.readUpload(c, "poster_file"); err != nil {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "The poster could not be read.")
		return
	}
	if movie.Backdrop, movie.BackdropType, err = h.readUpload(c, "backdrop_file"); err != nil {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "The backdrop could not be read.")
		return
	}

	if err := h.Repos.Movie.CreateInCollection(movie, collectionID); err != nil {
		log.Printf("[Movie] 新建失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the movie.")
		return
	}

	c.Redirect(http.StatusFound, "/movies/library")
}

// EditMoviePage 编辑表单
func (h *Handler) EditMoviePage(c *gin.Context) {
	movie, ok := h.loadMovie(c)
	if !ok {
		return
	}
	h.renderMovieForm(c, http.StatusOK, formFromMovie(movie), "", movie)
}

// EditMovie 保存编辑；只有上传了新文件才替换图片
func (h *Handler) EditMovie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}

	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		form.ID = id
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, validationMessage(err))
		return
	}
	if form.ID == 0 {
		form.ID = id
	}
	if form.ID != id {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}

	movie := form.toModel()
	if movie.Title == "" {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "Title is required.")
		return
	}
	var err error
	if movie.Poster, movie.PosterType, err = h.readUpload(c, "poster_file"); err != nil {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "The poster could not be read.")
		return
	}
	if movie.Backdrop, movie.BackdropType, err = h.readUpload(c, "backdrop_file"); err != nil {
		h.renderMovieForm(c, http.StatusUnprocessableEntity, &form, "The backdrop could not be read.")
		return
	}

	err = h.Repos.Movie.Update(movie, movie.Poster != nil, movie.Backdrop != nil)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	case errors.Is(err, repository.ErrConflict):
		h.renderError(c, http.StatusConflict, "This movie was changed by someone else. Reload and try again.")
		return
	case err != nil:
		log.Printf("[Movie] 更新失败 (ID: %d): %v", id, err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the movie.")
		return
	}

	c.Redirect(http.StatusFound, "/movies/library")
}

// DeleteMoviePage 删除确认
func (h *Handler) DeleteMoviePage(c *gin.Context) {
	movie, ok := h.loadMovie(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "movie_delete.html", h.RenderData(c, gin.H{
		"Title": "Delete " + movie.Title + " - " + h.Config.SiteName,
		"Movie": movie,
	}))
}

// DeleteMovie 删除电影及其片单关联、演职员
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}

	err := h.Repos.Movie.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return
	}
	if err != nil {
		log.Printf("[Movie] 删除失败 (ID: %d): %v", id, err)
		h.renderError(c, http.StatusInternalServerError, "Unable to delete the movie.")
		return
	}

	c.Redirect(http.StatusFound, "/movies/library")
}

// ==================== 内部方法 ====================

func (h *Handler) loadMovie(c *gin.Context) (*model.Movie, bool) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return nil, false
	}
	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Unable to load the movie.")
		return nil, false
	}
	if movie == nil {
		h.renderError(c, http.StatusNotFound, "Movie not found.")
		return nil, false
	}
	return movie, true
}

func (h *Handler) renderMovieForm(c *gin.Context, status int, form *movieForm, errMsg string, movie ...*model.Movie) {
	collections, err := h.Repos.Collection.ListAll()
	if err != nil {
		log.Printf("[Movie] 查询片单失败: %v", err)
	}

	data := gin.H{
		"Title":       "Movie - " + h.Config.SiteName,
		"Form":        form,
		"Ratings":     model.Ratings,
		"Collections": collections,
		"IsEdit":      form.ID != 0,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	if len(movie) > 0 {
		data["Movie"] = movie[0]
	}
	c.HTML(status, "movie_form.html", h.RenderData(c, data))
}

// resolveCollectionID 未选择片单时放入默认片单
func (h *Handler) resolveCollectionID(id int) (int, error) {
	if id == 0 {
		def, err := h.Repos.Collection.FindDefault()
		if err != nil {
			return 0, err
		}
		if def == nil {
			return 0, nil
		}
		return def.ID, nil
	}
	collection, err := h.Repos.Collection.FindByID(id)
	if err != nil {
		return 0, err
	}
	if collection == nil {
		return 0, errUnknownCollection
	}
	return collection.ID, nil
}

// readUpload 没有上传文件时返回 nil
func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	if fh.Size == 0 {
		return nil, "", nil
	}
	return h.Images.EncodeUpload(fh)
}
