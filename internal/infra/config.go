package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderReplicate = "replicate"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	GeoIPDBPath   string
	DefaultLocale string
	CORSOrigins   []string

	SceneProvider   string
	ProviderTimeout time.Duration

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIOrg          string
	OpenAIImageModel   string
	OpenAIImageSize    string
	OpenAIImageQuality string

	ReplicateAPIToken       string
	ReplicateBaseURL        string
	ReplicateModelVersion   string
	ReplicateInferenceSteps int
	ReplicateGuidanceScale  float64
	ReplicateAspectRatio    string
	ReplicatePollInterval   time.Duration
	ReplicateMaxPolls       int

	UploadDir      string
	MaxUploadBytes int64

	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3PublicURL      string
	S3KeyPrefix      string
	S3ForcePathStyle bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "3001"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "nl-NL"),
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		SceneProvider:   strings.ToLower(strings.TrimSpace(getEnv("SCENE_PROVIDER", ProviderOpenAI))),
		ProviderTimeout: time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)),

		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:          os.Getenv("OPENAI_ORG"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIImageSize:    getEnv("OPENAI_IMAGE_SIZE", "1024x1024"),
		OpenAIImageQuality: getEnv("OPENAI_IMAGE_QUALITY", "standard"),

		ReplicateAPIToken:       strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:        getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateModelVersion:   strings.TrimSpace(os.Getenv("REPLICATE_MODEL_VERSION")),
		ReplicateInferenceSteps: getEnvInt("REPLICATE_INFERENCE_STEPS", 50),
		ReplicateGuidanceScale:  getEnvFloat("REPLICATE_GUIDANCE_SCALE", 7.5),
		ReplicateAspectRatio:    getEnv("REPLICATE_ASPECT_RATIO", "1:1"),
		ReplicatePollInterval:   time.Second * time.Duration(getEnvInt("REPLICATE_POLL_INTERVAL_SECONDS", 5)),
		ReplicateMaxPolls:       getEnvInt("REPLICATE_MAX_POLL_ATTEMPTS", 60),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		S3KeyPrefix:      getEnv("S3_KEY_PREFIX", "scenes"),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 360)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.SceneProvider {
	case ProviderOpenAI:
	case ProviderReplicate:
		if cfg.ReplicateModelVersion == "" {
			return nil, fmt.Errorf("REPLICATE_MODEL_VERSION is required when SCENE_PROVIDER=replicate")
		}
	default:
		return nil, fmt.Errorf("SCENE_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderReplicate, cfg.SceneProvider)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.ReplicateMaxPolls <= 0 {
		return nil, fmt.Errorf("REPLICATE_MAX_POLL_ATTEMPTS must be positive")
	}

	return cfg, nil
}

// RenderBudget is the longest a single render may take. Replicate renders
// add the full polling window to the submission request.
func (c *Config) RenderBudget() time.Duration {
	budget := c.ProviderTimeout
	if c.SceneProvider == ProviderReplicate {
		budget += c.ReplicatePollInterval * time.Duration(c.ReplicateMaxPolls)
	}
	return budget
}

// HasDatabase reports whether the optional history and credential store is configured.
func (c *Config) HasDatabase() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

// HasArchive reports whether generated images should be copied to S3.
func (c *Config) HasArchive() bool { return strings.TrimSpace(c.S3Bucket) != "" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
