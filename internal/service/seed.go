package service

import (
	"fmt"
	"log"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/repository"
)

// SeedService 启动时同步表结构并写入默认数据
type SeedService struct {
	repos *repository.Repositories
	cfg   *config.Config
}

// NewSeedService 创建初始化服务
func NewSeedService(repos *repository.Repositories, cfg *config.Config) *SeedService {
	return &SeedService{repos: repos, cfg: cfg}
}

// Seed 可重复执行
func (s *SeedService) Seed() error {
	if err := repository.Migrate(s.repos.DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if err := s.seedDefaultCollection(); err != nil {
		return fmt.Errorf("初始化默认片单失败: %w", err)
	}
	if err := s.seedAdmin(); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}
	return nil
}

func (s *SeedService) seedDefaultCollection() error {
	existing, err := s.repos.Collection.FindDefault()
	if err != nil || existing != nil {
		return err
	}

	settings := s.cfg.DefaultCollection
	byName, err := s.repos.Collection.FindByName(settings.Name)
	if err != nil {
		return err
	}
	if byName != nil {
		log.Printf("[Seed] 已有同名片单 %q，标记为默认片单", settings.Name)
		return s.repos.Collection.MarkDefault(byName.ID)
	}

	log.Printf("[Seed] 创建默认片单 %q", settings.Name)
	return s.repos.Collection.Create(&model.Collection{
		Name:        settings.Name,
		Description: settings.Description,
		IsDefault:   true,
	})
}

func (s *SeedService) seedAdmin() error {
	creds := s.cfg.DefaultCredentials
	if creds.Email == "" || creds.Password == "" {
		return nil
	}
	existing, err := s.repos.User.FindByEmail(creds.Email)
	if err != nil || existing != nil {
		return err
	}

	log.Printf("[Seed] 创建管理员 %s", creds.Email)
	_, err = s.repos.User.Create(creds.Email, creds.Name, creds.Password, creds.Role)
	return err
}
