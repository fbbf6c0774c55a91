// Package config loads weave's layered configuration (defaults, config
// file, environment) via viper, the way orc's CLI root command does.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/weavehq/weave/internal/brainstorm"
)

// AutomationProfile picks how aggressively the pipeline proceeds without a
// human in the loop.
type AutomationProfile string

const (
	ProfileManual     AutomationProfile = "manual"
	ProfileAssisted   AutomationProfile = "assisted"
	ProfileAutonomous AutomationProfile = "autonomous"
)

// Config is weave's resolved runtime configuration, per §4.5/§4.3's named
// budgets and the brainstorm/storage knobs layered on top of them.
type Config struct {
	Automation AutomationProfile `mapstructure:"automation"`

	MaxRevisions          int `mapstructure:"max_revisions"`
	MaxGateRetries        int `mapstructure:"max_gate_retries"`
	MaxIntegrationRetries int `mapstructure:"max_integration_retries"`

	BrainstormMode   brainstorm.Mode  `mapstructure:"brainstorm_mode"`
	BrainstormConfig brainstorm.Config `mapstructure:"-"`

	StorageBackend string `mapstructure:"storage_backend"` // "file" or "sqlite"
	StorageDir     string `mapstructure:"storage_dir"`

	PollInterval time.Duration `mapstructure:"poll_interval"`

	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	MetricsAddr    string `mapstructure:"metrics_addr"`

	// CapabilityRegistryPath/BranchRegistryPath point at the YAML fixtures
	// backing the audit phase's capability and in-progress-branch lookups.
	CapabilityRegistryPath string `mapstructure:"capability_registry_path"`
	BranchRegistryPath     string `mapstructure:"branch_registry_path"`
	VocabularyPath         string `mapstructure:"vocabulary_path"`

	// SpecialistCommand/ReviewerCommand/IntegrationCommand are shelled out
	// to via internal/backend's JSON-over-stdio protocol; GateCommands maps
	// a gate kind name ("build", "unit", "lint", "contract", "numeric") to
	// the real shell command internal/backend.ShellGateRunner runs for it.
	SpecialistCommand  string            `mapstructure:"specialist_command"`
	ReviewerCommand    string            `mapstructure:"reviewer_command"`
	IntegrationCommand string            `mapstructure:"integration_command"`
	GateCommands       map[string]string `mapstructure:"gate_commands"`
	WorkDir            string            `mapstructure:"work_dir"`
}

// Default returns the configuration weave runs with absent any file or
// environment override.
func Default() *Config {
	return &Config{
		Automation:            ProfileAssisted,
		MaxRevisions:          3,
		MaxGateRetries:        2,
		MaxIntegrationRetries: 2,
		BrainstormMode:        brainstorm.ModeAuto,
		BrainstormConfig:      brainstorm.DefaultConfig(),
		StorageBackend:        "file",
		StorageDir:            ".weave/state",
		PollInterval:          2 * time.Second,
		MetricsEnabled:        false,
		MetricsAddr:           ":9090",
		CapabilityRegistryPath: ".weave/capabilities.yaml",
		BranchRegistryPath:     ".weave/branches.yaml",
		VocabularyPath:         ".weave/vocabulary.yaml",
		GateCommands: map[string]string{
			"build": "go build ./...",
			"unit":  "go test ./...",
			"lint":  "go vet ./...",
		},
		WorkDir: ".",
	}
}

// Load reads configuration from (in ascending precedence) built-in
// defaults, a config file under .weave/ or $HOME/.weave/, and WEAVE_*
// environment variables, mirroring the teacher CLI's initConfig.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.AddConfigPath(".weave")
		v.AddConfigPath("$HOME/.weave")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WEAVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("automation", string(d.Automation))
	v.SetDefault("max_revisions", d.MaxRevisions)
	v.SetDefault("max_gate_retries", d.MaxGateRetries)
	v.SetDefault("max_integration_retries", d.MaxIntegrationRetries)
	v.SetDefault("brainstorm_mode", string(d.BrainstormMode))
	v.SetDefault("storage_backend", d.StorageBackend)
	v.SetDefault("storage_dir", d.StorageDir)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("metrics_enabled", d.MetricsEnabled)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("capability_registry_path", d.CapabilityRegistryPath)
	v.SetDefault("branch_registry_path", d.BranchRegistryPath)
	v.SetDefault("vocabulary_path", d.VocabularyPath)
	v.SetDefault("specialist_command", d.SpecialistCommand)
	v.SetDefault("reviewer_command", d.ReviewerCommand)
	v.SetDefault("integration_command", d.IntegrationCommand)
	v.SetDefault("gate_commands", d.GateCommands)
	v.SetDefault("work_dir", d.WorkDir)
}
