package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm"
)

type Config struct {
	DB *gorm.DB `toml:"-"`

	Prod_env    bool
	Private_key string // admin routes access key

	Postgres struct {
		Host     string
		User     string
		Password string
		Db_name  string
		Port     uint16
		Ssl_mode string
	}

	Chain struct {
		RpcUrl          string `toml:"rpc_url"`
		ApiKey          string `toml:"api_key"`
		ContractAddress string `toml:"contract_address"`
		StartBlock      uint64 `toml:"start_block"`

		LookbackWindow uint64        `toml:"lookback_window"`
		BatchSize      uint64        `toml:"batch_size"`
		Confirmations  uint64        `toml:"confirmations"`
		PollInterval   time.Duration `toml:"poll_interval"`
	} `toml:"chain"`

	Webhook struct {
		Interval  time.Duration `toml:"interval"`
		Timeout   time.Duration `toml:"timeout"`
		BatchSize int           `toml:"batch_size"`

		ProxyPath string   `toml:"proxy_path"` // optional SOCKS5 egress list
		ProxyList []string `toml:"-"`
	} `toml:"webhook"`

	Nats struct {
		Servers []string `toml:"servers"`
	} `toml:"nats"`

	Api struct {
		Ipv4  string
		Proto string
	} `toml:"api"`
}

// env overrides for values that must not live in the config file
type secrets struct {
	RpcApiKey        string `envconfig:"RPC_API_KEY"`
	PostgresPassword string `envconfig:"PG_PASSWORD"`
	PrivateKey       string `envconfig:"PRIVATE_KEY"`
}

func ReadConfig() *Config {
	byte_config, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	var config Config
	_, err = toml.Decode(string(byte_config), &config)
	if err != nil {
		panic(err)
	}

	var sec secrets
	if err := envconfig.Process("paywatch", &sec); err != nil {
		panic(err)
	}
	if sec.RpcApiKey != "" {
		config.Chain.ApiKey = sec.RpcApiKey
	}
	if sec.PostgresPassword != "" {
		config.Postgres.Password = sec.PostgresPassword
	}
	if sec.PrivateKey != "" {
		config.Private_key = sec.PrivateKey
	}

	config.setDefaults()

	if config.Webhook.ProxyPath != "" {
		proxies, err := GetProxyList(config.Webhook.ProxyPath)
		if err != nil {
			panic(err)
		}
		config.Webhook.ProxyList = proxies
	}

	return &config
}

func (c *Config) setDefaults() {
	if c.Chain.LookbackWindow == 0 {
		c.Chain.LookbackWindow = 1000
	}
	if c.Chain.BatchSize == 0 {
		c.Chain.BatchSize = 1000
	}
	if c.Chain.Confirmations == 0 {
		c.Chain.Confirmations = 1
	}
	if c.Chain.PollInterval == 0 {
		c.Chain.PollInterval = 15 * time.Second
	}
	if c.Webhook.Interval == 0 {
		c.Webhook.Interval = 30 * time.Second
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Webhook.BatchSize == 0 {
		c.Webhook.BatchSize = 50
	}
}

func GetProxyList(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}
