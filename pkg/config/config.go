package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LegacyEnvPrefix 旧版部署使用的环境变量前缀（U2A_UDP_BIND_ADDR 等）
const LegacyEnvPrefix = "U2A_"

// Config 全局配置（启动时加载一次，之后只读）
type Config struct {
	UDPBindAddr           string `mapstructure:"udp_bind_addr" validate:"required"`
	AMQPURI               string `mapstructure:"amqp_uri" validate:"required,url"`
	AMQPExchange          string `mapstructure:"amqp_exchange"`    // 为空表示默认 exchange，不做 declare
	AMQPRoutingKey        string `mapstructure:"amqp_routing_key"` // 可为空
	HTTPProbePort         uint16 `mapstructure:"http_probe_port"`  // 0 表示不启动探针
	MetricsPort           uint16 `mapstructure:"metrics_port"`     // 0 表示不启动 metrics
	ReconnectDelayLimitMS uint64 `mapstructure:"reconnect_delay_limit_ms"`
	NoReconnect           bool   `mapstructure:"no_reconnect"`
	Debug                 bool   `mapstructure:"debug"`
}

var defaults = map[string]interface{}{
	"udp_bind_addr":            "",
	"amqp_uri":                 "",
	"amqp_exchange":            "",
	"amqp_routing_key":         "",
	"http_probe_port":          8080,
	"metrics_port":             0,
	"reconnect_delay_limit_ms": 60000,
	"no_reconnect":             false,
	"debug":                    false,
}

var validate = validator.New()

// Load 加载配置
// 优先级：环境变量 > 配置文件（可选）> 默认值
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
		env := strings.ToUpper(key)
		if err := v.BindEnv(key, env, LegacyEnvPrefix+env); err != nil {
			return nil, fmt.Errorf("bind env %s failed: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogLevel 日志级别
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return "info"
}

// RedactedAMQPURI 隐藏密码后的 AMQP URI（用于日志）
func (c *Config) RedactedAMQPURI() string {
	u, err := url.Parse(c.AMQPURI)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}
