package repository

import (
	"errors"
	"fmt"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"gorm.io/gorm"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindByID 根据 ID 查找电影
func (r *MovieRepository) FindByID(id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindWithCredits 连同演职员一起加载，按热度降序
func (r *MovieRepository) FindWithCredits(id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.
		Preload("Cast", func(db *gorm.DB) *gorm.DB { return db.Order("popularity DESC, id ASC") }).
		Preload("Crew", func(db *gorm.DB) *gorm.DB { return db.Order("popularity DESC, id ASC") }).
		First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByExternalID 根据 TMDB ID 查找已导入的电影
func (r *MovieRepository) FindByExternalID(externalID int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where("external_id = ?", externalID).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// ListAll 全部电影，按标题排序
func (r *MovieRepository) ListAll() ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Order("title ASC, id ASC").Find(&movies).Error
	return movies, err
}

// ListNotInCollection 不在指定片单中的电影
func (r *MovieRepository) ListNotInCollection(collectionID int) ([]model.Movie, error) {
	var movies []model.Movie
	sub := r.db.Model(&model.MovieCollection{}).Select("movie_id").Where("collection_id = ?", collectionID)
	err := r.db.Where("id NOT IN (?)", sub).Order("title ASC, id ASC").Find(&movies).Error
	return movies, err
}

// Count 电影总数
func (r *MovieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// CreateInCollection 在同一事务中写入电影（含演职员）并追加到片单末尾；collectionID 为 0 时不关联
func (r *MovieRepository) CreateInCollection(movie *model.Movie, collectionID int) error {
	if movie.Version == 0 {
		movie.Version = 1
	}
	if movie.Rating == "" {
		movie.Rating = model.RatingNR
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movie).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: %v", ErrDuplicate, err)
			}
			return err
		}
		if collectionID == 0 {
			return nil
		}
		return appendToCollection(tx, movie.ID, collectionID)
	})
}

// Update 按版本号更新基本信息；replacePoster/replaceBackdrop 为 false 时保留原图
func (r *MovieRepository) Update(movie *model.Movie, replacePoster, replaceBackdrop bool) error {
	updates := map[string]interface{}{
		"title":        movie.Title,
		"tagline":      movie.Tagline,
		"overview":     movie.Overview,
		"runtime":      movie.Runtime,
		"release_date": movie.ReleaseDate,
		"rating":       movie.Rating,
		"vote_average": movie.VoteAverage,
		"trailer_url":  movie.TrailerURL,
		"version":      gorm.Expr("version + 1"),
	}
	if replacePoster {
		updates["poster"] = movie.Poster
		updates["poster_type"] = movie.PosterType
	}
	if replaceBackdrop {
		updates["backdrop"] = movie.Backdrop
		updates["backdrop_type"] = movie.BackdropType
	}

	res := r.db.Model(&model.Movie{}).
		Where("id = ? AND version = ?", movie.ID, movie.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrMissing(movie.ID)
	}
	movie.Version++
	return nil
}

// Delete 事务内删除电影及其片单关联、演职员
func (r *MovieRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&model.MovieCollection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.MovieCast{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.MovieCrew{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Movie{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// conflictOrMissing 写入未命中时复查一次：行还在即冲突，不在即不存在
func (r *MovieRepository) conflictOrMissing(id int) error {
	var count int64
	if err := r.db.Model(&model.Movie{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
