package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BerniceZTT/carehome_end/pipeline"
)

// Config 应用配置
type Config struct {
	Port     int
	MongoURI string
	MongoDB  string
	JWTKey   string
	Debug    bool

	CORSOrigins  []string
	ExportPrefix string

	// 每日滞留检查的执行时刻（本地时间，小时）
	StaleSweepHour int
	// 当前阶段停留超过该天数的非终态咨询视为滞留
	StaleAfterDays int

	Urgency pipeline.UrgencyThresholds
}

// LoadConfig 从环境变量加载配置，存在 .env 时先加载
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("加载.env失败: %w", err)
	}

	cfg := &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:      getEnv("MONGO_DB", "carehome"),
		JWTKey:       getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		Debug:        getEnv("GIN_MODE", "debug") == "debug",
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3001,http://localhost:5173")),
		ExportPrefix: getEnv("EXPORT_PREFIX", "inquiries"),
		Urgency:      pipeline.DefaultUrgencyThresholds(),
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"PORT", 8080, &cfg.Port},
		{"STALE_SWEEP_HOUR", 2, &cfg.StaleSweepHour},
		{"STALE_AFTER_DAYS", 14, &cfg.StaleAfterDays},
		{"URGENCY_NEW_HIGH_DAYS", cfg.Urgency.NewHighAfterDays, &cfg.Urgency.NewHighAfterDays},
		{"URGENCY_NEW_CRITICAL_DAYS", cfg.Urgency.NewCriticalAfterDays, &cfg.Urgency.NewCriticalAfterDays},
		{"URGENCY_AGE_MEDIUM_DAYS", cfg.Urgency.AgeMediumAfterDays, &cfg.Urgency.AgeMediumAfterDays},
		{"URGENCY_AGE_HIGH_DAYS", cfg.Urgency.AgeHighAfterDays, &cfg.Urgency.AgeHighAfterDays},
	}
	for _, item := range ints {
		v, err := getEnvInt(item.key, item.def)
		if err != nil {
			return nil, err
		}
		*item.dst = v
	}

	hours := []struct {
		key string
		dst *time.Duration
	}{
		{"URGENCY_TOUR_CRITICAL_HOURS", &cfg.Urgency.TourCriticalWithin},
		{"URGENCY_TOUR_HIGH_HOURS", &cfg.Urgency.TourHighWithin},
		{"URGENCY_TOUR_MEDIUM_HOURS", &cfg.Urgency.TourMediumWithin},
	}
	for _, item := range hours {
		v, err := getEnvInt(item.key, int(item.dst.Hours()))
		if err != nil {
			return nil, err
		}
		*item.dst = time.Duration(v) * time.Hour
	}

	if raw := os.Getenv("URGENCY_HIGH_MATCH_SCORE"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("URGENCY_HIGH_MATCH_SCORE 不是有效的数字: %q", raw)
		}
		cfg.Urgency.HighMatchScore = score
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT 无效: %d", c.Port)
	}
	if c.StaleSweepHour < 0 || c.StaleSweepHour > 23 {
		return fmt.Errorf("STALE_SWEEP_HOUR 必须在0-23之间: %d", c.StaleSweepHour)
	}
	if c.StaleAfterDays <= 0 {
		return fmt.Errorf("STALE_AFTER_DAYS 必须大于0: %d", c.StaleAfterDays)
	}
	if c.ExportPrefix == "" {
		return fmt.Errorf("EXPORT_PREFIX 不能为空")
	}
	return c.Urgency.Validate()
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s 不是有效的整数: %q", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
