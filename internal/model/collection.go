package model

import "time"

// Collection 片单
type Collection struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" db:"description"`
	IsDefault   bool      `json:"is_default" db:"is_default" gorm:"index;not null;default:false"`
	Version     int       `json:"version" db:"version" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	MovieCollections []MovieCollection `json:"movies,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// MovieCollection 片单与电影的有序关联
type MovieCollection struct {
	ID           int         `json:"id" db:"id"`
	MovieID      int         `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:idx_movie_collection"`
	CollectionID int         `json:"collection_id" db:"collection_id" gorm:"not null;uniqueIndex:idx_movie_collection;index"`
	SortOrder    int         `json:"sort_order" db:"sort_order"`
	Movie        *Movie      `json:"movie,omitempty"`
	Collection   *Collection `json:"-"`
}
