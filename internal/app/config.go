// Package app 组装 sigflow 服务：配置加载、组件接线与生命周期管理。
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/sigflow/pkg/config/xconf"
)

// 配置错误定义。
var (
	// ErrNoStoreAddr 表示未配置信号存储地址。
	ErrNoStoreAddr = errors.New("app: no clickhouse address configured")

	// ErrNoListenAddr 表示未配置 HTTP 监听地址。
	ErrNoListenAddr = errors.New("app: no listen address configured")
)

// Config 是服务的完整配置。
//
// 字段通过 koanf 标签与配置文件（YAML/JSON）映射，
// 未出现在文件中的字段保持 DefaultConfig 的默认值。
type Config struct {
	Service    ServiceConfig    `koanf:"service"`
	Server     ServerConfig     `koanf:"server"`
	ClickHouse ClickHouseConfig `koanf:"clickhouse"`
	Recorder   RecorderConfig   `koanf:"recorder"`
	Log        LogConfig        `koanf:"log"`
}

// ServiceConfig 服务标识配置。
type ServiceConfig struct {
	// Name 写入日志与 Span 记录的服务名，部署期固定。
	Name string `koanf:"name"`
}

// ServerConfig HTTP 服务器配置。
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ClickHouseConfig 信号存储连接配置。
type ClickHouseConfig struct {
	Addr        []string      `koanf:"addr"`
	Database    string        `koanf:"database"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// RecorderConfig 观测记录器配置。
type RecorderConfig struct {
	// Sync 为 true 时记录在请求 goroutine 内同步写入，
	// 默认异步（队列 + 后台 worker）。
	Sync             bool          `koanf:"sync"`
	QueueSize        int           `koanf:"queue_size"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

// LogConfig 进程日志配置。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File 非空时日志写入轮转文件，否则输出到 stderr。
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// DefaultConfig 返回默认配置，可直接用于本地开发。
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "sigflow",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		ClickHouse: ClickHouseConfig{
			Addr:        []string{"localhost:9000"},
			Database:    "default",
			Username:    "default",
			DialTimeout: 5 * time.Second,
		},
		Recorder: RecorderConfig{
			QueueSize:        1024,
			WriteTimeout:     5 * time.Second,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate 校验配置的完整性。
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrNoListenAddr
	}
	if len(c.ClickHouse.Addr) == 0 {
		return ErrNoStoreAddr
	}
	return nil
}

// LoadConfig 加载配置文件并合并到默认配置上。
//
// path 为空时返回纯默认配置，第二个返回值为 nil（不可热加载）。
// path 非空时第二个返回值为配置源，可用于 xconf.Watch 热加载。
func LoadConfig(path string) (*Config, xconf.Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil, nil
	}

	source, err := xconf.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("app: load config %q: %w", path, err)
	}
	if err := source.Unmarshal("", cfg); err != nil {
		return nil, nil, fmt.Errorf("app: parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, source, nil
}
