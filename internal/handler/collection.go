package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/gin-gonic/gin"
)

type collectionForm struct {
	ID          int    `form:"id"`
	Version     int    `form:"version"`
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description" binding:"max=1000"`
}

// Collections 自建片单列表
func (h *Handler) Collections(c *gin.Context) {
	h.renderCollections(c, http.StatusOK, nil, "")
}

// CreateCollection 新建片单后跳到片单编排页
func (h *Handler) CreateCollection(c *gin.Context) {
	var form collectionForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderCollections(c, http.StatusUnprocessableEntity, &form, validationMessage(err))
		return
	}

	collection := &model.Collection{
		Name:        utils.CleanLine(form.Name),
		Description: utils.StripTags(form.Description),
	}
	if collection.Name == "" {
		h.renderCollections(c, http.StatusUnprocessableEntity, &form, "Name is required.")
		return
	}

	err := h.Repos.Collection.Create(collection)
	if errors.Is(err, repository.ErrDuplicate) {
		h.renderCollections(c, http.StatusUnprocessableEntity, &form, "A collection with this name already exists.")
		return
	}
	if err != nil {
		log.Printf("[Collection] 新建失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the collection.")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/movie-collections?id=%d", collection.ID))
}

// EditCollectionPage 编辑表单；默认片单不可编辑
func (h *Handler) EditCollectionPage(c *gin.Context) {
	collection, ok := h.loadCustomCollection(c)
	if !ok {
		return
	}
	h.renderCollectionForm(c, http.StatusOK, &collectionForm{
		ID:          collection.ID,
		Version:     collection.Version,
		Name:        collection.Name,
		Description: collection.Description,
	}, "")
}

// EditCollection 保存编辑
func (h *Handler) EditCollection(c *gin.Context) {
	collection, ok := h.loadCustomCollection(c)
	if !ok {
		return
	}

	var form collectionForm
	if err := c.ShouldBind(&form); err != nil {
		form.ID = collection.ID
		h.renderCollectionForm(c, http.StatusUnprocessableEntity, &form, validationMessage(err))
		return
	}
	if form.ID == 0 {
		form.ID = collection.ID
	}
	if form.ID != collection.ID {
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return
	}

	update := &model.Collection{
		ID:          collection.ID,
		Version:     form.Version,
		Name:        utils.CleanLine(form.Name),
		Description: utils.StripTags(form.Description),
	}
	if update.Name == "" {
		h.renderCollectionForm(c, http.StatusUnprocessableEntity, &form, "Name is required.")
		return
	}

	err := h.Repos.Collection.Update(update)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		h.renderCollectionForm(c, http.StatusUnprocessableEntity, &form, "A collection with this name already exists.")
		return
	case errors.Is(err, repository.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return
	case errors.Is(err, repository.ErrConflict):
		h.renderError(c, http.StatusConflict, "This collection was changed by someone else. Reload and try again.")
		return
	case err != nil:
		log.Printf("[Collection] 更新失败 (ID: %d): %v", collection.ID, err)
		h.renderError(c, http.StatusInternalServerError, "Unable to save the collection.")
		return
	}

	c.Redirect(http.StatusFound, "/collections")
}

// DeleteCollectionPage 删除确认
func (h *Handler) DeleteCollectionPage(c *gin.Context) {
	collection, ok := h.loadCustomCollection(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "collection_delete.html", h.RenderData(c, gin.H{
		"Title":      "Delete " + collection.Name + " - " + h.Config.SiteName,
		"Collection": collection,
	}))
}

// DeleteCollection 删除片单及其关联，电影本身保留
func (h *Handler) DeleteCollection(c *gin.Context) {
	collection, ok := h.loadCustomCollection(c)
	if !ok {
		return
	}

	err := h.Repos.Collection.Delete(collection.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return
	case errors.Is(err, repository.ErrConflict):
		c.Redirect(http.StatusFound, "/collections")
		return
	case err != nil:
		log.Printf("[Collection] 删除失败 (ID: %d): %v", collection.ID, err)
		h.renderError(c, http.StatusInternalServerError, "Unable to delete the collection.")
		return
	}

	c.Redirect(http.StatusFound, "/collections")
}

// loadCustomCollection 默认片单直接跳回列表，不做任何修改
func (h *Handler) loadCustomCollection(c *gin.Context) (*model.Collection, bool) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return nil, false
	}
	collection, err := h.Repos.Collection.FindByID(id)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Unable to load the collection.")
		return nil, false
	}
	if collection == nil {
		h.renderError(c, http.StatusNotFound, "Collection not found.")
		return nil, false
	}
	if collection.IsDefault {
		c.Redirect(http.StatusFound, "/collections")
		return nil, false
	}
	return collection, true
}

func (h *Handler) renderCollections(c *gin.Context, status int, form *collectionForm, errMsg string) {
	collections, err := h.Repos.Collection.ListCustom()
	if err != nil {
		log.Printf("[Collection] 查询失败: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Unable to load collections.")
		return
	}
	if form == nil {
		form = &collectionForm{}
	}

	data := gin.H{
		"Title":       "Collections - " + h.Config.SiteName,
		"Collections": collections,
		"Form":        form,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "collections.html", h.RenderData(c, data))
}

func (h *Handler) renderCollectionForm(c *gin.Context, status int, form *collectionForm, errMsg string) {
	data := gin.H{
		"Title": "Edit collection - " + h.Config.SiteName,
		"Form":  form,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "collection_form.html", h.RenderData(c, data))
}
