package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

// ErrMalformedResponse 响应体无法按预期结构解析
var ErrMalformedResponse = errors.New("malformed response")

// HTTPStatusError 非 2xx 响应
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsNotFound 判断错误是否为远程 404
func IsNotFound(err error) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// HTTPClient HTTP客户端
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPClient 创建新的HTTP客户端，不额外设置超时，生命周期由请求 context 决定
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{},
		userAgent:  "MoviePro/1.0",
	}
}

// NewHTTPClientWith 使用自定义 http.Client（测试中指向 httptest 服务）
func NewHTTPClientWith(c *http.Client) *HTTPClient {
	return &HTTPClient{httpClient: c, userAgent: "MoviePro/1.0"}
}

// Get 发送GET请求，非 2xx 返回 *HTTPStatusError
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", redact(rawURL), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: redact(rawURL), StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// GetJSON 发送GET请求并解析JSON响应
func (c *HTTPClient) GetJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		log.Printf("[HTTP] 解析JSON失败: %v, 地址: %s", err, redact(rawURL))
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, redact(rawURL), err)
	}
	return nil
}

// GetBytes 发送GET请求并完整读取响应体
func (c *HTTPClient) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return body, nil
}

// redact 去掉 api_key，避免写进日志和错误信息
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
