package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrConflict 记录已被其他请求修改
	ErrConflict = errors.New("record was modified concurrently")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
)

// InitDB 初始化数据库连接，driver 为 postgres 或 sqlite
func InitDB(driver, dsn string, logSQL bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if logSQL {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	switch driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("无法打开 sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite 单写者；内存库每个连接都是独立的库
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	case "postgres", "":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("无法连接数据库: %w", err)
		}

		// 测试连接
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("数据库 ping 失败: %w", err)
		}

		// 设置连接池
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)

		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	}
	return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
}

// Migrate 同步表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Movie{},
		&model.Collection{},
		&model.MovieCast{},
		&model.MovieCrew{},
		&model.MovieCollection{},
		&model.User{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB              *gorm.DB
	User            *UserRepository
	Movie           *MovieRepository
	Collection      *CollectionRepository
	MovieCollection *MovieCollectionRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:              db,
		User:            NewUserRepository(db),
		Movie:           NewMovieRepository(db),
		Collection:      NewCollectionRepository(db),
		MovieCollection: NewMovieCollectionRepository(db),
	}
}

// isDuplicateKey 兼容 lib/pq 与 sqlite 的唯一约束错误
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
