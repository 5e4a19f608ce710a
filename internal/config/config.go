package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env           string
	AppSecret     string
	SessionSecret string
	JWTExpiry     time.Duration
	Port          string
	SiteName      string
	TemplatesDir  string
	StaticDir     string

	DBDriver    string
	DatabaseURL string
	DBLog       bool

	TMDB               TMDBSettings
	DefaultCollection  CollectionSettings
	DefaultCredentials CredentialSettings
}

// TMDBSettings 远程电影数据源配置
type TMDBSettings struct {
	APIKey           string
	BaseURL          string
	ImageBase        string
	VideoBase        string
	Language         string
	AppendToResponse string
	Page             string
	PosterSize       string
	BackdropSize     string
	DefaultCastImage string
}

// CollectionSettings 默认片单
type CollectionSettings struct {
	Name        string
	Description string
}

// CredentialSettings 启动时写入的管理员账号
type CredentialSettings struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", defaultSecret))
	env := getEnv("APP_ENV", "development")

	if env == "production" && appSecret == defaultSecret {
		fmt.Println("[Config] 生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))

	return &Config{
		Env:           env,
		AppSecret:     appSecret,
		SessionSecret: getEnv("SESSION_SECRET", appSecret),
		JWTExpiry:     time.Duration(expiryHours) * time.Hour,
		Port:          getEnv("PORT", "5000"),
		SiteName:      getEnv("SITE_NAME", "MoviePro"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:     getEnv("STATIC_DIR", "./web/static"),

		DBDriver:    driver,
		DatabaseURL: databaseURL(driver),
		DBLog:       getEnv("DB_LOG", "false") == "true",

		TMDB: TMDBSettings{
			APIKey:           getEnv("TMDB_API_KEY", ""),
			BaseURL:          strings.TrimRight(getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
			ImageBase:        strings.TrimRight(getEnv("TMDB_IMAGE_BASE", "https://image.tmdb.org/t/p"), "/"),
			VideoBase:        getEnv("TMDB_VIDEO_BASE", "https://www.youtube.com/watch?v="),
			Language:         getEnv("TMDB_LANGUAGE", "en-US"),
			AppendToResponse: getEnv("TMDB_APPEND", "credits,images,videos,release_dates"),
			Page:             getEnv("TMDB_PAGE", "1"),
			PosterSize:       getEnv("POSTER_SIZE", "w500"),
			BackdropSize:     getEnv("BACKDROP_SIZE", "original"),
			DefaultCastImage: getEnv("DEFAULT_CAST_IMAGE", "/static/images/default_cast.svg"),
		},
		DefaultCollection: CollectionSettings{
			Name:        getEnv("DEFAULT_COLLECTION_NAME", "All"),
			Description: getEnv("DEFAULT_COLLECTION_DESCRIPTION", "Every movie in the catalog"),
		},
		DefaultCredentials: CredentialSettings{
			Email:    getEnv("ADMIN_EMAIL", "admin@moviepro.local"),
			Password: getEnv("ADMIN_PASSWORD", "Abc&123!"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Role:     getEnv("ADMIN_ROLE", "Administrator"),
		},
	}
}

// databaseURL DATABASE_URL 优先，否则由 DB_* 拼接
func databaseURL(driver string) string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if driver == "sqlite" {
		return getEnv("DB_NAME", "moviepro.db")
	}

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "moviepro")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
