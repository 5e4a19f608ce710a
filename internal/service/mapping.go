package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
)

const (
	maxCredits   = 20
	notAvailable = "Not Available"
	dateLayout   = "2006-01-02"
	birthdayView = "02 Jan, 2006"
)

// ErrMapping 远程记录无法转换为本地实体
var ErrMapping = errors.New("movie mapping failed")

// MappingError 带外部 ID 的映射失败
type MappingError struct {
	ExternalID int
	Err        error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map movie %d: %v", e.ExternalID, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

func (e *MappingError) Is(target error) bool { return target == ErrMapping }

// ImageFetcher 按 URL 取回图片字节
type ImageFetcher interface {
	EncodeFromURL(ctx context.Context, url string) ([]byte, error)
}

// Mapper 把 TMDB 原始记录转换为本地实体
type Mapper struct {
	settings config.TMDBSettings
	images   ImageFetcher
}

// NewMapper 创建映射器
func NewMapper(settings config.TMDBSettings, images ImageFetcher) *Mapper {
	return &Mapper{settings: settings, images: images}
}

// MapMovieDetail 生成待保存的 Movie；任一步失败都不返回半成品
func (m *Mapper) MapMovieDetail(ctx context.Context, raw *tmdb.MovieDetail) (*model.Movie, error) {
	if raw == nil {
		return nil, &MappingError{Err: errors.New("empty movie detail")}
	}
	movie, err := m.mapMovieDetail(ctx, raw)
	if err != nil {
		log.Printf("[Mapper] 电影映射失败 (ID: %d): %v", raw.ID, err)
		return nil, &MappingError{ExternalID: raw.ID, Err: err}
	}
	return movie, nil
}

func (m *Mapper) mapMovieDetail(ctx context.Context, raw *tmdb.MovieDetail) (*model.Movie, error) {
	releaseDate, err := parseDate(raw.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("release date %q: %w", raw.ReleaseDate, err)
	}

	externalID := raw.ID
	movie := &model.Movie{
		ExternalID:  &externalID,
		Title:       raw.Title,
		Tagline:     raw.Tagline,
		Overview:    raw.Overview,
		Runtime:     raw.Runtime,
		ReleaseDate: releaseDate,
		VoteAverage: raw.VoteAverage,
		Genres:      joinGenres(raw.Genres),
		Rating:      ResolveRating(raw.ReleaseDates),
		TrailerURL:  m.trailerURL(raw.Videos),
		Cast:        m.mapCast(raw.Credits.Cast),
		Crew:        m.mapCrew(raw.Credits.Crew),
		Version:     1,
	}

	movie.Poster, movie.PosterType, err = m.fetchImage(ctx, m.settings.PosterSize, imagePath(raw.PosterPath, raw.Images.Posters))
	if err != nil {
		return nil, fmt.Errorf("poster: %w", err)
	}
	movie.Backdrop, movie.BackdropType, err = m.fetchImage(ctx, m.settings.BackdropSize, imagePath(raw.BackdropPath, raw.Images.Backdrops))
	if err != nil {
		return nil, fmt.Errorf("backdrop: %w", err)
	}

	return movie, nil
}

// MapActorDetail 返回新的展示值，不修改入参
func (m *Mapper) MapActorDetail(raw tmdb.ActorDetail) model.ActorDetail {
	actor := model.ActorDetail{
		ExternalID:   raw.ID,
		Name:         raw.Name,
		Biography:    orNotAvailable(raw.Biography),
		PlaceOfBirth: orNotAvailable(raw.PlaceOfBirth),
		Birthday:     notAvailable,
		ImageURL:     m.profileURL(raw.ProfilePath),
	}

	if b := strings.TrimSpace(raw.Birthday); b != "" {
		if t, err := time.Parse(dateLayout, b); err == nil {
			actor.Birthday = t.Format(birthdayView)
		} else {
			actor.Birthday = b
		}
	}
	return actor
}

// MapSearchResults 把海报相对路径补全为完整地址
func (m *Mapper) MapSearchResults(raw *tmdb.MovieSearch) []model.MovieSummary {
	if raw == nil {
		return nil
	}
	out := make([]model.MovieSummary, 0, len(raw.Results))
	for _, r := range raw.Results {
		out = append(out, model.MovieSummary{
			ExternalID:  r.ID,
			Title:       r.Title,
			PosterURL:   m.ImageURL(m.settings.PosterSize, r.PosterPath),
			VoteAverage: r.VoteAverage,
			ReleaseDate: r.ReleaseDate,
		})
	}
	return out
}

// ImageURL {image_base}/{size}/{path}
func (m *Mapper) ImageURL(size, relPath string) string {
	if relPath == "" {
		return ""
	}
	return m.settings.ImageBase + "/" + size + "/" + strings.TrimLeft(relPath, "/")
}

// imagePath 主图为空时取图库中第一张
func imagePath(primary string, gallery []tmdb.Image) string {
	if primary != "" {
		return primary
	}
	for _, img := range gallery {
		if img.FilePath != "" {
			return img.FilePath
		}
	}
	return ""
}

// ResolveRating 取美国分级中第一个非空字符串（空白串也算），去掉连字符后解析，默认 NR
func ResolveRating(dates tmdb.ReleaseDates) model.Rating {
	for _, country := range dates.Results {
		if country.ISO3166_1 != "US" {
			continue
		}
		for _, rel := range country.ReleaseDates {
			if rel.Certification == "" {
				continue
			}
			cert := strings.TrimSpace(rel.Certification)
			if rating, ok := model.ParseRating(strings.ReplaceAll(cert, "-", "")); ok {
				return rating
			}
			return model.RatingNR
		}
		return model.RatingNR
	}
	return model.RatingNR
}

func (m *Mapper) trailerURL(videos tmdb.Videos) string {
	for _, v := range videos.Results {
		if strings.ToLower(strings.TrimSpace(v.Type)) == "trailer" && v.Key != "" {
			return m.settings.VideoBase + v.Key
		}
	}
	return ""
}

func (m *Mapper) fetchImage(ctx context.Context, size, relPath string) ([]byte, string, error) {
	if relPath == "" {
		return nil, "", nil
	}
	data, err := m.images.EncodeFromURL(ctx, m.ImageURL(size, relPath))
	if err != nil {
		return nil, "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(relPath), "."))
	if ext == "" {
		return data, DetectImageType(data, ""), nil
	}
	return data, "image/" + ext, nil
}

func (m *Mapper) profileURL(profilePath string) string {
	if profilePath == "" {
		return m.settings.DefaultCastImage
	}
	return m.ImageURL(m.settings.PosterSize, profilePath)
}

// mapCast 按热度降序，每个 cast_id 只留第一条，最多 20 条
func (m *Mapper) mapCast(cast []tmdb.Cast) []model.MovieCast {
	sorted := append([]tmdb.Cast(nil), cast...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})

	seen := make(map[int]bool, len(sorted))
	out := make([]model.MovieCast, 0, min(len(sorted), maxCredits))
	for _, c := range sorted {
		if seen[c.CastID] {
			continue
		}
		seen[c.CastID] = true
		out = append(out, model.MovieCast{
			PersonID:   c.ID,
			Department: c.KnownForDepartment,
			Name:       c.Name,
			Character:  c.Character,
			ImageURL:   m.profileURL(c.ProfilePath),
			Popularity: c.Popularity,
		})
		if len(out) == maxCredits {
			break
		}
	}
	return out
}

// mapCrew 规则同 mapCast，按人物 id 去重
func (m *Mapper) mapCrew(crew []tmdb.Crew) []model.MovieCrew {
	sorted := append([]tmdb.Crew(nil), crew...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})

	seen := make(map[int]bool, len(sorted))
	out := make([]model.MovieCrew, 0, min(len(sorted), maxCredits))
	for _, c := range sorted {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, model.MovieCrew{
			PersonID:   c.ID,
			Department: c.Department,
			Name:       c.Name,
			Job:        c.Job,
			ImageURL:   m.profileURL(c.ProfilePath),
			Popularity: c.Popularity,
		})
		if len(out) == maxCredits {
			break
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func joinGenres(genres []tmdb.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return strings.Join(names, ", ")
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
