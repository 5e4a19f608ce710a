package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/utils"
)

// ErrUnknownCategory 分类不在 now_playing/popular/top_rated/upcoming 之内
var ErrUnknownCategory = errors.New("unknown movie category")

// Client TMDB 客户端，每个方法只发一次 GET
type Client struct {
	http     *utils.HTTPClient
	settings config.TMDBSettings
}

// NewClient 创建客户端
func NewClient(settings config.TMDBSettings, httpClient *utils.HTTPClient) *Client {
	return &Client{http: httpClient, settings: settings}
}

// MovieSearch 获取分类列表，count <= 0 时不截断
func (c *Client) MovieSearch(ctx context.Context, category Category, count int) (*MovieSearch, error) {
	if _, ok := ParseCategory(string(category)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	q := c.query()
	q.Set("page", c.settings.Page)

	var result MovieSearch
	if err := c.http.GetJSON(ctx, c.endpoint("/movie/"+string(category), q), &result); err != nil {
		log.Printf("[TMDB] 获取分类 %s 失败: %v", category, err)
		return nil, err
	}

	if count > 0 && len(result.Results) > count {
		result.Results = result.Results[:count]
	}
	return &result, nil
}

// MovieDetail 获取电影详情（含 credits/videos/images/release_dates）
func (c *Client) MovieDetail(ctx context.Context, id int) (*MovieDetail, error) {
	q := c.query()
	if c.settings.AppendToResponse != "" {
		q.Set("append_to_response", c.settings.AppendToResponse)
	}

	var result MovieDetail
	if err := c.http.GetJSON(ctx, c.endpoint("/movie/"+strconv.Itoa(id), q), &result); err != nil {
		log.Printf("[TMDB] 获取电影详情失败 (ID: %d): %v", id, err)
		return nil, err
	}
	return &result, nil
}

// ActorDetail 获取人物详情
func (c *Client) ActorDetail(ctx context.Context, id int) (*ActorDetail, error) {
	var result ActorDetail
	if err := c.http.GetJSON(ctx, c.endpoint("/person/"+strconv.Itoa(id), c.query()), &result); err != nil {
		log.Printf("[TMDB] 获取人物详情失败 (ID: %d): %v", id, err)
		return nil, err
	}
	return &result, nil
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("api_key", c.settings.APIKey)
	q.Set("language", c.settings.Language)
	return q
}

func (c *Client) endpoint(path string, q url.Values) string {
	return c.settings.BaseURL + path + "?" + q.Encode()
}
