package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DbHost     string
	DbPort     string
	DbUser     string
	DbPass     string
	DbName     string
	DbSSLMode  string
	Migrations bool

	JWTSecret      string
	AccessTokenTTL string
	AdminEmail     string
	AdminPassword  string

	Log      string
	LogLevel string
	LogDir   string
	Env      string // dev|prod

	SiteURL     string
	SiteName    string
	XHashtags   string
	HTTPTimeout time.Duration

	PageGeneratorArticleURL string
	PageGeneratorNewsURL    string
	LineBroadcastURL        string
	XPostURL                string
	AssistURL               string
	AssistTimeout           time.Duration

	RedisURL string
	CacheTTL time.Duration

	S3Endpoint    string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3PublicURL   string
	MediaMaxBytes int64
}

// LoadConfig reads .env and the environment and applies defaults.
// It does not log, so it can run before the logger exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	httpTimeout, err := time.ParseDuration(def(os.Getenv("HTTP_TIMEOUT"), "10s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	assistTimeout, err := time.ParseDuration(def(os.Getenv("ASSIST_TIMEOUT"), "60s"))
	if err != nil {
		return nil, fmt.Errorf("ASSIST_TIMEOUT: %w", err)
	}
	cacheTTL, err := time.ParseDuration(def(os.Getenv("CACHE_TTL"), "5m"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	maxBytes, err := strconv.ParseInt(def(os.Getenv("MEDIA_MAX_BYTES"), "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MEDIA_MAX_BYTES: %w", err)
	}

	cfg := &Config{
		Port:       def(os.Getenv("PORT"), "8080"),
		DbHost:     os.Getenv("DB_HOST"),
		DbPort:     def(os.Getenv("DB_PORT"), "5432"),
		DbUser:     os.Getenv("DB_USER"),
		DbPass:     os.Getenv("DB_PASSWORD"),
		DbName:     os.Getenv("DB_NAME"),
		DbSSLMode:  def(os.Getenv("DB_SSLMODE"), "disable"),
		Migrations: strings.ToLower(def(os.Getenv("MIGRATIONS"), "on")) == "on",

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "15m"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		LogDir:   def(os.Getenv("LOG_DIR"), "logs"),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		SiteURL:     strings.TrimRight(def(os.Getenv("SITE_URL"), "https://asahigaoka-nerima.tokyo"), "/"),
		SiteName:    def(os.Getenv("SITE_NAME"), "旭丘一丁目町会"),
		XHashtags:   def(os.Getenv("X_HASHTAGS"), "#旭丘一丁目"),
		HTTPTimeout: httpTimeout,

		PageGeneratorArticleURL: os.Getenv("PAGE_GENERATOR_ARTICLE_URL"),
		PageGeneratorNewsURL:    os.Getenv("PAGE_GENERATOR_NEWS_URL"),
		LineBroadcastURL:        os.Getenv("LINE_BROADCAST_URL"),
		XPostURL:                os.Getenv("X_POST_URL"),
		AssistURL:               os.Getenv("ASSIST_URL"),
		AssistTimeout:           assistTimeout,

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: cacheTTL,

		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      def(os.Getenv("S3_REGION"), "auto"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Bucket:      def(os.Getenv("S3_BUCKET"), "articles-images"),
		S3PublicURL:   strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		MediaMaxBytes: maxBytes,
	}

	return cfg, nil
}

// Validate returns warnings and a fatal error when the service cannot start.
func (c *Config) Validate() (warnings []string, err error) {
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	if room := xBodyRoom(c.SiteURL, c.XHashtags); room <= 0 {
		return nil, fmt.Errorf("X_HASHTAGS is too long: no room left for the post body within %d characters", xMaxLength)
	}

	if c.PageGeneratorArticleURL == "" || c.PageGeneratorNewsURL == "" {
		warnings = append(warnings, "page generator endpoints are not set; detail pages and listings will not be updated")
	}
	if c.LineBroadcastURL == "" {
		warnings = append(warnings, "LINE_BROADCAST_URL is not set")
	}
	if c.XPostURL == "" {
		warnings = append(warnings, "X_POST_URL is not set")
	}
	if c.AssistURL == "" {
		warnings = append(warnings, "ASSIST_URL is not set; AI drafting is unavailable")
	}
	if c.S3Endpoint == "" || c.S3AccessKey == "" {
		warnings = append(warnings, "S3 storage is not fully configured")
	}
	if c.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL is empty, listing cache disabled")
	}

	return warnings, nil
}

// X posts are limited to xMaxLength runes. Budgets assume the article id
// (a uuid) as the URL slug.
const (
	xMaxLength     = 280
	xSlugAllowance = 36
)

// xBodyRoom is the number of runes left for the post body once the hashtags,
// the article URL and a truncation ellipsis are appended.
func xBodyRoom(siteURL, hashtags string) int {
	url := strings.TrimRight(siteURL, "/") + "/news/" + strings.Repeat("x", xSlugAllowance) + ".html"
	return xMaxLength - utf8.RuneCountInString("\n"+hashtags+"\n"+url) - len("...")
}

// GetDSN returns the full DSN including the password.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe is GetDSN with the password masked, for logs.
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
