package repository

import (
	"github.com/SaeedAdam/MoviePro/internal/model"
	"gorm.io/gorm"
)

type MovieCollectionRepository struct {
	db *gorm.DB
}

func NewMovieCollectionRepository(db *gorm.DB) *MovieCollectionRepository {
	return &MovieCollectionRepository{db: db}
}

// ListMovies 片单内电影，按 sort_order 排列
func (r *MovieCollectionRepository) ListMovies(collectionID int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.
		Joins("JOIN movie_collections ON movie_collections.movie_id = movies.id").
		Where("movie_collections.collection_id = ?", collectionID).
		Order("movie_collections.sort_order ASC, movie_collections.id ASC").
		Find(&movies).Error
	return movies, err
}

// MovieIDs 片单内电影 ID，按 sort_order 排列
func (r *MovieCollectionRepository) MovieIDs(collectionID int) ([]int, error) {
	var ids []int
	err := r.db.Model(&model.MovieCollection{}).
		Where("collection_id = ?", collectionID).
		Order("sort_order ASC, id ASC").
		Pluck("movie_id", &ids).Error
	return ids, err
}

// Add 追加到片单末尾，已存在时不做任何事
func (r *MovieCollectionRepository) Add(movieID, collectionID int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return appendToCollection(tx, movieID, collectionID)
	})
}

// Replace 事务内重写片单：先删除全部关联，再按提交顺序写入 1..N；重复 ID 只保留第一次出现
func (r *MovieCollectionRepository) Replace(collectionID int, movieIDs []int) error {
	ids := dedupe(movieIDs)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var collections int64
		if err := tx.Model(&model.Collection{}).Where("id = ?", collectionID).Count(&collections).Error; err != nil {
			return err
		}
		if collections == 0 {
			return ErrNotFound
		}

		if len(ids) > 0 {
			var found int64
			if err := tx.Model(&model.Movie{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return err
			}
			if int(found) != len(ids) {
				return ErrNotFound
			}
		}

		if err := tx.Where("collection_id = ?", collectionID).Delete(&model.MovieCollection{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		rows := make([]model.MovieCollection, 0, len(ids))
		for i, id := range ids {
			rows = append(rows, model.MovieCollection{
				MovieID:      id,
				CollectionID: collectionID,
				SortOrder:    i + 1,
			})
		}
		return tx.Create(&rows).Error
	})
}

// appendToCollection 在给定事务内把电影放到片单末尾
func appendToCollection(tx *gorm.DB, movieID, collectionID int) error {
	var existing int64
	if err := tx.Model(&model.MovieCollection{}).
		Where("movie_id = ? AND collection_id = ?", movieID, collectionID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	var maxOrder int
	if err := tx.Model(&model.MovieCollection{}).
		Where("collection_id = ?", collectionID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return err
	}

	return tx.Create(&model.MovieCollection{
		MovieID:      movieID,
		CollectionID: collectionID,
		SortOrder:    maxOrder + 1,
	}).Error
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
