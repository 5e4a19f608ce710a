package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/gabriel-vasile/mimetype"
)

// ImageService 图片读入与展示
type ImageService struct {
	client *utils.HTTPClient
}

// NewImageService 创建图片服务
func NewImageService(client *utils.HTTPClient) *ImageService {
	return &ImageService{client: client}
}

// Encode 读完整个流；nil 输入返回 nil
func (s *ImageService) Encode(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取图片失败: %w", err)
	}
	return data, nil
}

// EncodeUpload 读取上传文件并识别类型，未上传时返回 nil
func (s *ImageService) EncodeUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh == nil {
		return nil, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()

	data, err := s.Encode(f)
	if err != nil {
		return nil, "", err
	}
	return data, DetectImageType(data, fh.Header.Get("Content-Type")), nil
}

// EncodeFromURL 下载整张图片到内存，非 2xx 和网络错误原样返回
func (s *ImageService) EncodeFromURL(ctx context.Context, url string) ([]byte, error) {
	return s.client.GetBytes(ctx, url)
}

// DetectImageType 优先按内容识别，识别不出图片时退回上传头
func DetectImageType(data []byte, fallback string) string {
	if len(data) > 0 {
		if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
			return mt.String()
		}
	}
	return fallback
}

// DecodeImage 生成 data URI；contentType 可以是 "png" 也可以是 "image/png"
func DecodeImage(data []byte, contentType string) string {
	if data == nil || contentType == "" {
		return ""
	}
	subtype := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
	return "data:image/" + subtype + ";base64," + base64.StdEncoding.EncodeToString(data)
}
