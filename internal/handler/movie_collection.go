package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
	"github.com/gin-gonic/gin"
)

// MovieCollections 片单编排页：?id= 缺省时使用默认片单
func (h *Handler) MovieCollections(c *gin.Context) {
	collection, ok := h.selectCollection(c, c.Query("id"))
	if !ok {
		return
	}

	inCollection, err := h.Repos.MovieCollection.ListMovies(collection.ID)
	if err != nil {
		log.Printf("[MovieCollection] 查询片单电影失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the collection.")
		return
	}
	notInCollection, err := h.Repos.Movie.ListNotInCollection(collection.ID)
	if err != nil {
		log.Printf("[MovieCollection] 查询其余电影失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the collection.")
		return
	}
	collections, err := h.Repos.Collection.ListAll()
	if err != nil {
		log.Printf("[MovieCollection] 查询片单失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the collection.")
		return
	}

	c.HTML(http.StatusOK, "movie_collections.html", h.RenderData(c, gin.H{
		"Title":           collection.Name + " - " + h.Config.SiteName,
		"Collection":      collection,
		"Collections":     collections,
		"InCollection":    inCollection,
		"NotInCollection": notInCollection,
	}))
}

// SaveMovieCollections 按提交顺序重写片单
func (h *Handler) SaveMovieCollections(c *gin.Context) {
	collection, ok := h.selectCollection(c, c.PostForm("id"))
	if !ok {
		return
	}

	raw := c.PostFormArray("ids_in_collection")
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			h.renderError(c, http.StatusBadRequest, "The submitted movie list is invalid.")
			return
		}
		ids = append(ids, id)
	}

	err := h.Repos.MovieCollection.Replace(collection.ID, ids)
	if errors.Is(err, repository.ErrNotFound) {
		// 片单已确认存在，只可能是未知的电影 ID
		h.renderError(c, http.StatusBadRequest, "The submitted movie list contains unknown movies.")
		return
	}
	if err != nil {
		log.Printf("[MovieCollection] 保存失败 (片单: %d): %v", collection.ID, err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the collection.")
		return
	}

	h.flash(c, flashSuccess, fmt.Sprintf("Saved %q.", collection.Name))
	c.Redirect(http.StatusFound, fmt.Sprintf("/movie-collections?id=%d", collection.ID))
}

// selectCollection 空值取默认片单，找不到时渲染 404
func (h *Handler) selectCollection(c *gin.Context, raw string) (*model.Collection, bool) {
	var collection *model.Collection
	var err error
	if raw == "" {
		collection, err = h.Repos.Collection.FindDefault()
	} else {
		id, convErr := strconv.Atoi(raw)
		if convErr != nil || id <= 0 {
			h.renderError(c, http.StatusNotFound, "Collection not found.")
			return nil, false
		}
		collection, err = h.Repos.Collection.FindByID(id)
	}
	if err != nil {
		log.Printf("[MovieCollection] 查询片单失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load the collection.")
		return nil, false
	}
	if collection == nil {
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return nil, false
	}
	return collection, true
}
