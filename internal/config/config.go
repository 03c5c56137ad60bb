package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type StaticConf struct {
	Folder       string `mapstructure:"folder"`
	FileExt      string `mapstructure:"file_ext"`
	IDByteLength int    `mapstructure:"id_byte_length"`
	PrefixLength int    `mapstructure:"prefix_length"`
}

type SizeConf struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type ImageConf struct {
	Small       SizeConf `mapstructure:"small"`
	Medium      SizeConf `mapstructure:"medium"`
	Large       SizeConf `mapstructure:"large"`
	Quality     int      `mapstructure:"quality"`
	MaxUploadMB int      `mapstructure:"max_upload_mb"`
}

type MapConf struct {
	URLTemplate string `mapstructure:"url_template"`
	Zoom        int    `mapstructure:"zoom"`
	SmallSize   int    `mapstructure:"small_size"`
	MediumSize  int    `mapstructure:"medium_size"`
	LargeSize   int    `mapstructure:"large_size"`
}

type ScannerConf struct {
	Name           string `mapstructure:"name"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type RecognitionConf struct {
	EnabledScanners []string      `mapstructure:"enabled_scanners"`
	Scanners        []ScannerConf `mapstructure:"scanners"`
	BreakerMaxFails uint32        `mapstructure:"breaker_max_fails"`
	BreakerCooldown int           `mapstructure:"breaker_cooldown_seconds"`
}

type AWSConf struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type MongoConf struct {
	URI             string `mapstructure:"uri"`
	Database        string `mapstructure:"database"`
	RandoCollection string `mapstructure:"rando_collection"`
	UserCollection  string `mapstructure:"user_collection"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConf struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type JWTConf struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type PipelineConf struct {
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds"`
}

type Config struct {
	App         AppConf             `mapstructure:"app"`
	Static      StaticConf          `mapstructure:"static"`
	Image       ImageConf           `mapstructure:"image"`
	Map         MapConf             `mapstructure:"map"`
	Recognition RecognitionConf     `mapstructure:"recognition"`
	AWS         AWSConf             `mapstructure:"aws"`
	Mongo       MongoConf           `mapstructure:"mongodb"`
	Redis       RedisConf           `mapstructure:"redis"`
	RateLimit   RateLimitConf       `mapstructure:"rate_limit"`
	JWT         JWTConf             `mapstructure:"jwt"`
	Pipeline    PipelineConf        `mapstructure:"pipeline"`
	DetectedTag map[string][]string `mapstructure:"detected_tags"`

	// derived
	ShutdownTimeout time.Duration
	RunTimeout      time.Duration
	RateLimitWindow time.Duration
	BreakerCooldown time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.Static.IDByteLength == 0 {
		cfg.Static.IDByteLength = 16
	}
	if cfg.Static.PrefixLength == 0 {
		cfg.Static.PrefixLength = 2
	}
	if cfg.Static.FileExt == "" {
		cfg.Static.FileExt = "jpg"
	}
	if cfg.Image.Quality == 0 {
		cfg.Image.Quality = 85
	}
	if cfg.Image.MaxUploadMB == 0 {
		cfg.Image.MaxUploadMB = 10
	}
	if cfg.Pipeline.RunTimeoutSeconds == 0 {
		cfg.Pipeline.RunTimeoutSeconds = 60
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 30
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.Recognition.BreakerMaxFails == 0 {
		cfg.Recognition.BreakerMaxFails = 5
	}
	if cfg.Recognition.BreakerCooldown == 0 {
		cfg.Recognition.BreakerCooldown = 30
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.RunTimeout = time.Duration(cfg.Pipeline.RunTimeoutSeconds) * time.Second
	cfg.RateLimitWindow = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	cfg.BreakerCooldown = time.Duration(cfg.Recognition.BreakerCooldown) * time.Second
	return &cfg, nil
}
