package model

import (
	"strings"
	"time"
)

// Rating 分级
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG13"
	RatingR    Rating = "R"
	RatingNC17 Rating = "NC17"
	RatingNR   Rating = "NR"
)

// Ratings 全部分级，按从低到高排列
var Ratings = []Rating{RatingG, RatingPG, RatingPG13, RatingR, RatingNC17, RatingNR}

// ParseRating 不区分大小写解析分级
func ParseRating(s string) (Rating, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Ratings {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Label 页面展示名
func (r Rating) Label() string {
	switch r {
	case RatingPG13:
		return "PG-13"
	case RatingNC17:
		return "NC-17"
	case RatingNR, "":
		return "Not Rated"
	default:
		return string(r)
	}
}

// Movie 本地电影
type Movie struct {
	ID           int       `json:"id" db:"id"`
	ExternalID   *int      `json:"external_id" db:"external_id" gorm:"uniqueIndex"`
	Title        string    `json:"title" db:"title" gorm:"size:255;not null;index"`
	Tagline      string    `json:"tagline" db:"tagline"`
	Overview     string    `json:"overview" db:"overview"`
	Runtime      int       `json:"runtime" db:"runtime"`
	ReleaseDate  time.Time `json:"release_date" db:"release_date"`
	Rating       Rating    `json:"rating" db:"rating" gorm:"size:8"`
	VoteAverage  float64   `json:"vote_average" db:"vote_average"`
	Genres       string    `json:"genres" db:"genres"`
	Poster       []byte    `json:"-" db:"poster"`
	PosterType   string    `json:"poster_type" db:"poster_type"`
	Backdrop     []byte    `json:"-" db:"backdrop"`
	BackdropType string    `json:"backdrop_type" db:"backdrop_type"`
	TrailerURL   string    `json:"trailer_url" db:"trailer_url"`
	Version      int       `json:"version" db:"version" gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Cast        []MovieCast       `json:"cast,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Crew        []MovieCrew       `json:"crew,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Collections []MovieCollection `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// MovieCast 演员表条目
type MovieCast struct {
	ID         int     `json:"id" db:"id"`
	MovieID    int     `json:"movie_id" db:"movie_id" gorm:"index;not null"`
	PersonID   int     `json:"person_id" db:"person_id"`
	Department string  `json:"department" db:"department"`
	Name       string  `json:"name" db:"name"`
	Character  string  `json:"character" db:"character"`
	ImageURL   string  `json:"image_url" db:"image_url"`
	Popularity float64 `json:"popularity" db:"popularity"`
}

func (MovieCast) TableName() string {
	return "movie_cast"
}

// MovieCrew 幕后人员条目
type MovieCrew struct {
	ID         int     `json:"id" db:"id"`
	MovieID    int     `json:"movie_id" db:"movie_id" gorm:"index;not null"`
	PersonID   int     `json:"person_id" db:"person_id"`
	Department string  `json:"department" db:"department"`
	Name       string  `json:"name" db:"name"`
	Job        string  `json:"job" db:"job"`
	ImageURL   string  `json:"image_url" db:"image_url"`
	Popularity float64 `json:"popularity" db:"popularity"`
}

func (MovieCrew) TableName() string {
	return "movie_crew"
}

// MovieSummary 远程列表中的一条搜索结果
type MovieSummary struct {
	ExternalID  int     `json:"id"`
	Title       string  `json:"title"`
	PosterURL   string  `json:"poster_url"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// ActorDetail 演员详情（展示用，不落库）
type ActorDetail struct {
	ExternalID   int    `json:"id"`
	Name         string `json:"name"`
	Biography    string `json:"biography"`
	Birthday     string `json:"birthday"`
	PlaceOfBirth string `json:"place_of_birth"`
	ImageURL     string `json:"image_url"`
}
