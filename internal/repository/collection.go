package repository

import (
	"errors"
	"fmt"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// FindByID 根据 ID 查找片单
func (r *CollectionRepository) FindByID(id int) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.First(&collection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindByName 根据名称查找片单
func (r *CollectionRepository) FindByName(name string) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.Where("name = ?", name).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindDefault 默认片单（is_default 标记）
func (r *CollectionRepository) FindDefault() (*model.Collection, error) {
	var collection model.Collection
	err := r.db.Where("is_default = ?", true).Order("id ASC").First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListAll 全部片单，默认片单排在最前
func (r *CollectionRepository) ListAll() ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.Order("is_default DESC, name ASC").Find(&collections).Error
	return collections, err
}

// ListCustom 用户创建的片单（不含默认片单）
func (r *CollectionRepository) ListCustom() ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.Where("is_default = ?", false).Order("name ASC").Find(&collections).Error
	return collections, err
}

// ListWithMovies 首页用：片单连同有序电影
func (r *CollectionRepository) ListWithMovies() ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.
		Preload("MovieCollections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("MovieCollections.Movie").
		Order("is_default DESC, name ASC").
		Find(&collections).Error
	return collections, err
}

// Create 创建片单
func (r *CollectionRepository) Create(collection *model.Collection) error {
	if collection.Version == 0 {
		collection.Version = 1
	}
	if err := r.db.Create(collection).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	return nil
}

// MarkDefault 把已有片单标记为默认片单
func (r *CollectionRepository) MarkDefault(id int) error {
	return r.db.Model(&model.Collection{}).Where("id = ?", id).Update("is_default", true).Error
}

// Update 按版本号更新名称和描述，默认片单不会被命中
func (r *CollectionRepository) Update(collection *model.Collection) error {
	res := r.db.Model(&model.Collection{}).
		Where("id = ? AND version = ? AND is_default = ?", collection.ID, collection.Version, false).
		Updates(map[string]interface{}{
			"name":        collection.Name,
			"description": collection.Description,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return fmt.Errorf("%w: %v", ErrDuplicate, res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&model.Collection{}).Where("id = ?", collection.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	collection.Version++
	return nil
}

// Delete 事务内删除片单及其关联，默认片单不会被删除
func (r *CollectionRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var collection model.Collection
		err := tx.First(&collection, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if collection.IsDefault {
			return ErrConflict
		}
		if err := tx.Where("collection_id = ?", id).Delete(&model.MovieCollection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Collection{}, id).Error
	})
}
