package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
	"github.com/JoeShih716/go-account-ledger/pkg/redis"
)

// 帳戶來源
const (
	SourceSeed  = "seed"
	SourceMySQL = "mysql"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	GRPC         GRPCConfig         `yaml:"grpc"`
	HTTP         HTTPConfig         `yaml:"http"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
	MySQL        mysql.Config       `yaml:"mysql"`
	Journal      JournalConfig      `yaml:"journal"`
	Redis        RedisConfig        `yaml:"redis"`
}

type GRPCConfig struct {
	Addr       string `yaml:"addr"`
	Reflection bool   `yaml:"reflection"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// gin mode: debug / release / test
	Mode string `yaml:"mode"`
}

// ProvisioningConfig 啟動時帳戶從哪裡來
// source=seed 使用 Seed (未設定時只有帳戶 1，餘額 100.5)，source=mysql 從 accounts 表載入
type ProvisioningConfig struct {
	Source string        `yaml:"source"`
	Seed   []SeedAccount `yaml:"seed"`
}

// DefaultSeed 預設的種子帳戶
var DefaultSeed = []SeedAccount{{ID: 1, Balance: "100.5"}}

// SeedAccount 餘額以字串表示，例如 "100.5"
type SeedAccount struct {
	ID      int64  `yaml:"id"`
	Balance string `yaml:"balance"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// 每次寫入都 fsync
	SyncEveryWrite bool `yaml:"sync_every_write"`
	// 沒有每次 fsync 時，定期把緩衝區刷入硬碟
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type RedisConfig struct {
	Enabled      bool `yaml:"enabled"`
	redis.Config `yaml:",inline"`
	Stream       string `yaml:"stream"`
	MaxLen       int64  `yaml:"max_len"`
}

// Load 讀取 yaml 設定檔並補上預設值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = "release"
	}
	if c.Provisioning.Source == "" {
		c.Provisioning.Source = SourceSeed
	}
	if c.Provisioning.Source == SourceSeed && len(c.Provisioning.Seed) == 0 {
		c.Provisioning.Seed = append([]SeedAccount(nil), DefaultSeed...)
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "operations.log"
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = time.Second
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "ledger.operations"
	}
	if c.Provisioning.Source == SourceMySQL {
		c.MySQL = c.MySQL.WithDefaults()
	}
}

func (c *Config) Validate() error {
	switch c.Provisioning.Source {
	case SourceSeed:
		if _, err := c.SeedAccounts(); err != nil {
			return err
		}
	case SourceMySQL:
		if c.MySQL.Host == "" {
			return fmt.Errorf("%w: mysql.host is required when provisioning.source is mysql", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown provisioning.source %q", ErrInvalidConfig, c.Provisioning.Source)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

// SeedAccounts 將 seed 設定轉成領域帳戶
// 重複 id 會在放入 store 時才被擋下
func (c *Config) SeedAccounts() ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(c.Provisioning.Seed))
	for _, s := range c.Provisioning.Seed {
		balance, err := decimal.NewFromString(s.Balance)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d balance %q: %v", ErrInvalidConfig, s.ID, s.Balance, err)
		}
		acc, err := domain.NewAccount(s.ID, balance)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d: %v", ErrInvalidConfig, s.ID, err)
		}
		out = append(out, acc)
	}
	return out, nil
}
