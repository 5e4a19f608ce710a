package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"golang.org/x/sync/singleflight"
)

// LandingCount 首页每个分类展示的数量
const LandingCount = 16

// RemoteMovieService 远程电影数据源
type RemoteMovieService interface {
	MovieSearch(ctx context.Context, category tmdb.Category, count int) (*tmdb.MovieSearch, error)
	MovieDetail(ctx context.Context, id int) (*tmdb.MovieDetail, error)
	ActorDetail(ctx context.Context, id int) (*tmdb.ActorDetail, error)
}

// ImportResult 导入结果；Existing 为 true 表示本地已有，没有重新拉取
type ImportResult struct {
	Movie    *model.Movie
	Existing bool
}

// CategoryResults 首页一个分类
type CategoryResults struct {
	Category tmdb.Category
	Label    string
	Movies   []model.MovieSummary
}

// Landing 首页数据
type Landing struct {
	Collections []model.Collection
	Categories  []CategoryResults
}

// CatalogService 编排远程拉取、映射与落库
type CatalogService struct {
	repos  *repository.Repositories
	remote RemoteMovieService
	mapper *Mapper
	group  singleflight.Group
}

// NewCatalogService 创建目录服务
func NewCatalogService(repos *repository.Repositories, remote RemoteMovieService, mapper *Mapper) *CatalogService {
	return &CatalogService{
		repos:  repos,
		remote: remote,
		mapper: mapper,
	}
}

// Import 导入 TMDB 电影；已导入的直接返回本地记录
func (s *CatalogService) Import(ctx context.Context, externalID int) (*ImportResult, error) {
	// 使用 singleflight 避免并发重复导入；共享的导入不随首个请求断开而取消
	shared := context.WithoutCancel(ctx)
	val, err, _ := s.group.Do(strconv.Itoa(externalID), func() (interface{}, error) {
		return s.importMovie(shared, externalID)
	})
	if err != nil {
		return nil, err
	}
	return val.(*ImportResult), nil
}

func (s *CatalogService) importMovie(ctx context.Context, externalID int) (*ImportResult, error) {
	existing, err := s.repos.Movie.FindByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ImportResult{Movie: existing, Existing: true}, nil
	}

	raw, err := s.remote.MovieDetail(ctx, externalID)
	if err != nil {
		return nil, err
	}

	movie, err := s.mapper.MapMovieDetail(ctx, raw)
	if err != nil {
		return nil, err
	}

	defaultCollection, err := s.repos.Collection.FindDefault()
	if err != nil {
		return nil, err
	}
	collectionID := 0
	if defaultCollection != nil {
		collectionID = defaultCollection.ID
	} else {
		log.Printf("[Import] 未找到默认片单，电影 %d 不会加入片单", externalID)
	}

	if err := s.repos.Movie.CreateInCollection(movie, collectionID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 其他请求已先一步导入
			if existing, ferr := s.repos.Movie.FindByExternalID(externalID); ferr == nil && existing != nil {
				return &ImportResult{Movie: existing, Existing: true}, nil
			}
		}
		return nil, fmt.Errorf("保存电影失败: %w", err)
	}

	log.Printf("[Import] 已导入 %q (TMDB: %d, 本地: %d)", movie.Title, externalID, movie.ID)
	return &ImportResult{Movie: movie}, nil
}

// RemoteDetails 拉取并映射，不落库
func (s *CatalogService) RemoteDetails(ctx context.Context, externalID int) (*model.Movie, error) {
	raw, err := s.remote.MovieDetail(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.mapper.MapMovieDetail(ctx, raw)
}

// ActorDetails 人物详情
func (s *CatalogService) ActorDetails(ctx context.Context, personID int) (*model.ActorDetail, error) {
	raw, err := s.remote.ActorDetail(ctx, personID)
	if err != nil {
		return nil, err
	}
	actor := s.mapper.MapActorDetail(*raw)
	return &actor, nil
}

// Search 分类列表
func (s *CatalogService) Search(ctx context.Context, category tmdb.Category, count int) ([]model.MovieSummary, error) {
	raw, err := s.remote.MovieSearch(ctx, category, count)
	if err != nil {
		return nil, err
	}
	return s.mapper.MapSearchResults(raw), nil
}

// Landing 首页：本地片单 + 四个远程分类，单个分类失败只记录日志
func (s *CatalogService) Landing(ctx context.Context, count int) (*Landing, error) {
	collections, err := s.repos.Collection.ListWithMovies()
	if err != nil {
		return nil, err
	}

	landing := &Landing{Collections: collections}
	for _, category := range tmdb.Categories {
		movies, err := s.Search(ctx, category, count)
		if err != nil {
			log.Printf("[Catalog] 首页分类 %s 加载失败: %v", category, err)
		}
		landing.Categories = append(landing.Categories, CategoryResults{
			Category: category,
			Label:    category.Label(),
			Movies:   movies,
		})
	}
	return landing, nil
}
