// Package config 加载 dbmap 的运行配置（viper：dbmap.yaml + DBMAP_* 环境变量）。
package config

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"dbmap/errors"
)

// Config 运行配置
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Mapping   MappingConfig   `mapstructure:"mapping"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// DatabaseConfig 数据库驱动与连接串
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// MappingConfig 映射层设置
type MappingConfig struct {
	MetadataTTL        time.Duration `mapstructure:"metadata_ttl" validate:"gte=0"`
	MetadataMaxSize    int           `mapstructure:"metadata_max_size" validate:"gte=0"`
	ValidateParameters bool          `mapstructure:"validate_parameters"`
}

// ResourcesConfig SQL 资源来源
type ResourcesConfig struct {
	Source   string        `mapstructure:"source" validate:"oneof=embed redis nats"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	Redis    RedisConfig   `mapstructure:"redis"`
	NATS     NATSConfig    `mapstructure:"nats"`
}

// RedisConfig Redis 资源存储
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

// NATSConfig NATS JetStream KV 资源存储
type NATSConfig struct {
	URL    string `mapstructure:"url"`
	Bucket string `mapstructure:"bucket"`
}

// LogConfig 日志设置
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=std zap"`
}

// MetricsConfig Prometheus 指标
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

// Load 读取配置：默认值 < dbmap.yaml < DBMAP_* 环境变量
//
// 配置文件在 "."、"./config" 以及 paths 中查找，文件不存在不视为错误。
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("dbmap")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("DBMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stdErrors.As(err, &notFound) {
			return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:chinook.db")

	v.SetDefault("mapping.metadata_ttl", "4h")
	v.SetDefault("mapping.metadata_max_size", 1024)
	v.SetDefault("mapping.validate_parameters", false)

	v.SetDefault("resources.source", "embed")
	v.SetDefault("resources.cache_ttl", "10m")
	v.SetDefault("resources.redis.address", "127.0.0.1:6379")
	v.SetDefault("resources.redis.username", "")
	v.SetDefault("resources.redis.password", "")
	v.SetDefault("resources.redis.db", 0)
	v.SetDefault("resources.redis.prefix", "sql:")
	v.SetDefault("resources.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("resources.nats.bucket", "sql")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "std")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "dbmap")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New()
	vd.RegisterStructValidation(validateResources, ResourcesConfig{})
	return vd
}

// 按 source 检查对应后端的必填项
func validateResources(sl validator.StructLevel) {
	rc := sl.Current().Interface().(ResourcesConfig)
	switch rc.Source {
	case "redis":
		if rc.Redis.Address == "" {
			sl.ReportError(rc.Redis.Address, "Redis.Address", "Address", "required_for_source", rc.Source)
		}
	case "nats":
		if rc.NATS.URL == "" {
			sl.ReportError(rc.NATS.URL, "NATS.URL", "URL", "required_for_source", rc.Source)
		}
		if rc.NATS.Bucket == "" {
			sl.ReportError(rc.NATS.Bucket, "NATS.Bucket", "Bucket", "required_for_source", rc.Source)
		}
	}
}

// Validate 校验配置，返回 CONFIGURATION_ERROR，详情中列出失败字段
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !stdErrors.As(err, &ve) {
		return errors.WrapError(err, errors.ErrCodeConfiguration, "config: validate")
	}

	failed := make([]string, 0, len(ve))
	for _, fe := range ve {
		failed = append(failed, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return errors.NewErrorWithCause(errors.ErrCodeConfiguration, "config: invalid values", err).
		WithContext(errors.DetailField, failed)
}
