package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Webhook    WebhookConfig
	Runner     RunnerConfig
	Registry   RegistryConfig
	ConfigRepo ConfigRepoConfig
	Kubernetes KubernetesConfig
	Sync       SyncConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type LoggerConfig struct {
	Level  string
	Format string
}

type WebhookConfig struct {
	Secret string
}

type RunnerConfig struct {
	WorkDir        string
	MaxOutputBytes int
}

type RegistryConfig struct {
	Enabled bool
}

type ConfigRepoConfig struct {
	Enabled bool
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	Token   string
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	DefaultNS      string
}

type SyncConfig struct {
	PollInterval time.Duration
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pipeline_orchestrator")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("WEBHOOK_SECRET", "")

	v.SetDefault("RUNNER_WORK_DIR", "")
	v.SetDefault("RUNNER_MAX_OUTPUT_BYTES", 16384)

	v.SetDefault("REGISTRY_ENABLED", false)

	v.SetDefault("CONFIG_REPO_ENABLED", false)
	v.SetDefault("CONFIG_REPO_BASE_URL", "https://api.github.com")
	v.SetDefault("CONFIG_REPO_OWNER", "")
	v.SetDefault("CONFIG_REPO_NAME", "")
	v.SetDefault("CONFIG_REPO_BRANCH", "main")
	v.SetDefault("CONFIG_REPO_TOKEN", "")

	v.SetDefault("K8S_ENABLED", false)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_DEFAULT_NAMESPACE", "flux-system")

	v.SetDefault("SYNC_POLL_INTERVAL", "30s")

	// Env
	v.AutomaticEnv()

	connLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connLifetime = 30 * time.Minute
	}
	pollInterval, err := time.ParseDuration(v.GetString("SYNC_POLL_INTERVAL"))
	if err != nil {
		pollInterval = 30 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connLifetime,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Webhook: WebhookConfig{
			Secret: v.GetString("WEBHOOK_SECRET"),
		},
		Runner: RunnerConfig{
			WorkDir:        v.GetString("RUNNER_WORK_DIR"),
			MaxOutputBytes: v.GetInt("RUNNER_MAX_OUTPUT_BYTES"),
		},
		Registry: RegistryConfig{
			Enabled: v.GetBool("REGISTRY_ENABLED"),
		},
		ConfigRepo: ConfigRepoConfig{
			Enabled: v.GetBool("CONFIG_REPO_ENABLED"),
			BaseURL: v.GetString("CONFIG_REPO_BASE_URL"),
			Owner:   v.GetString("CONFIG_REPO_OWNER"),
			Repo:    v.GetString("CONFIG_REPO_NAME"),
			Branch:  v.GetString("CONFIG_REPO_BRANCH"),
			Token:   v.GetString("CONFIG_REPO_TOKEN"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("K8S_ENABLED"),
			InCluster:      v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath: v.GetString("K8S_KUBECONFIG"),
			DefaultNS:      v.GetString("K8S_DEFAULT_NAMESPACE"),
		},
		Sync: SyncConfig{
			PollInterval: pollInterval,
		},
	}

	return cfg, nil
}
