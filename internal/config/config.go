// Package config 读取命令行工具的配置与词表
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/redactor"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
)

// 配置文件名（不含扩展名）与环境变量前缀
const (
	configName = ".redactor"
	envPrefix  = "REDACTOR"
)

// LLMConfig 大模型后端配置
type LLMConfig struct {
	Backend string `mapstructure:"backend"` // ollama | openai | compatible
	Model   string `mapstructure:"model"`   // 模型名称
	URL     string `mapstructure:"url"`     // 服务地址，空表示使用后端默认
	APIKey  string `mapstructure:"api_key"` // API 密钥
	Timeout int    `mapstructure:"timeout"` // 请求超时（秒）
}

// Config 保存脱敏工具的所有配置
type Config struct {
	Strategy     string    `mapstructure:"strategy"`
	EnableLLM    bool      `mapstructure:"enable_llm"`
	LLM          LLMConfig `mapstructure:"llm"`
	LexiconFile  string    `mapstructure:"lexicon_file"`  // TOML 词表文件
	SaveEntities bool      `mapstructure:"save_entities"` // 在输出旁写出实体 JSON
	Debug        bool      `mapstructure:"debug"`

	// 日志文件，为空时只输出到控制台
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
}

// LoadConfig 加载配置
//
// 先读取 .env（envFiles 为空时读取当前目录的 .env，不存在则跳过），
// 再读取 YAML 配置文件，最后由 REDACTOR_ 前缀的环境变量覆盖。
// configPath 为空时在家目录和当前目录查找 .redactor.yaml。
func LoadConfig(configPath string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	// 读取环境变量，llm.model 对应 REDACTOR_LLM_MODEL
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	def := redactor.DefaultOptions()

	v.SetDefault("strategy", def.Strategy)
	v.SetDefault("enable_llm", false)
	v.SetDefault("llm.backend", providers.BackendOllama)
	v.SetDefault("llm.model", def.LLM.Model)
	// 为空时各后端使用自己的默认地址
	v.SetDefault("llm.url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", int(def.LLM.Timeout/time.Second))
	v.SetDefault("lexicon_file", "")
	v.SetDefault("save_entities", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
}

// Validate 检查取值范围；策略是否存在由 redactor.New 判断
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Strategy) == "" {
		return fmt.Errorf("strategy must be specified")
	}

	switch c.LLM.Backend {
	case providers.BackendOllama, providers.BackendOpenAI, providers.BackendCompatible:
	default:
		return fmt.Errorf("llm.backend %q is not supported", c.LLM.Backend)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

// RedactorOptions 转换为脱敏器配置，lexicon 可以为 nil
func (c *Config) RedactorOptions(lexicon *Lexicon) redactor.Options {
	opts := redactor.Options{
		Strategy:  c.Strategy,
		EnableLLM: c.EnableLLM,
		LLM: redactor.LLMOptions{
			Backend: c.LLM.Backend,
			Model:   c.LLM.Model,
			URL:     c.LLM.URL,
			APIKey:  c.LLM.APIKey,
			Timeout: time.Duration(c.LLM.Timeout) * time.Second,
		},
	}
	if lexicon != nil {
		opts.Vocabulary = append([]string(nil), lexicon.Vocabulary...)
		opts.Placeholders = lexicon.KindPlaceholders()
	}
	return opts
}
