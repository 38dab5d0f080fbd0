package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// Manager layers configuration sources into a types.Config: defaults,
// then .krillclaw.json, then KRILLCLAW_* environment variables, then
// CLI flags registered on its pflag.FlagSet.
type Manager struct {
	v     *viper.Viper
	flags *pflag.FlagSet
}

// New builds a Manager with the CLI flag surface already registered.
// Call Flags().Parse(args) before Load.
func New() *Manager {
	v := viper.New()
	flags := pflag.NewFlagSet("krillclaw", pflag.ContinueOnError)

	flags.StringP("model", "m", "", "model name")
	flags.StringP("prompt", "p", "", "run one-shot with this prompt")
	flags.String("provider", "", "claude|openai|ollama")
	flags.String("base-url", "", "override provider base URL")
	flags.Bool("no-stream", false, "disable streaming")
	flags.String("transport", "", "http|ble|serial")
	flags.String("serial-port", "", "serial device path")
	flags.String("ble-device", "", "BLE device address")
	flags.Int("cron-interval", 0, "scheduler interval in seconds, 0 disables")
	flags.String("cron-prompt", "", "prompt the scheduler runs on each tick")
	flags.Int("cron-max-runs", 0, "scheduler run ceiling, 0 means unbounded")
	flags.Int("heartbeat", 0, "heartbeat interval in seconds, 0 disables")
	flags.BoolP("version", "v", false, "print version and exit")
	flags.BoolP("help", "h", false, "show usage")

	return &Manager{v: v, flags: flags}
}

// Flags exposes the registered flag set for Parse/Help handling.
func (m *Manager) Flags() *pflag.FlagSet { return m.flags }

// Load merges the file, environment, and flag layers over the compiled
// defaults and returns the resulting Config plus any one-shot prompt
// (from -p/--prompt, else the first positional argument). Flags().Parse
// must have already run.
func (m *Manager) Load() (Loaded, error) {
	applyDefaults(m.v)

	m.v.SetConfigName(configFileName)
	m.v.SetConfigType("json")
	m.v.AddConfigPath(".")
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Loaded{}, err
		}
	}

	m.v.SetEnvPrefix("KRILLCLAW")
	m.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	m.v.AutomaticEnv()

	cfg := m.resolve()
	return Loaded{Config: cfg, Prompt: m.prompt()}, nil
}

// resolve walks each recognised field through file → env → flag
// layering, field by field rather than a single Unmarshal, because the
// three sources don't share one naming convention (file keys are
// snake_case per §6, flags are kebab-case, env vars are
// KRILLCLAW_UPPER_SNAKE) and a handful of fields also have bespoke
// sources (the two bare provider-key env vars, --serial-port/--ble-
// device implying --transport).
func (m *Manager) resolve() types.Config {
	cfg := types.DefaultConfig()

	cfg.Model = m.v.GetString("model")
	cfg.Provider = types.ParseProvider(m.v.GetString("provider"))
	cfg.BaseURL = m.v.GetString("base_url")
	cfg.MaxTokens = m.v.GetInt("max_tokens")
	cfg.MaxContextTokens = m.v.GetInt("max_context_tokens")
	cfg.MaxTurns = m.v.GetInt("max_turns")
	cfg.SystemPrompt = m.v.GetString("system_prompt")
	cfg.Streaming = m.v.GetBool("streaming")
	cfg.TransportKind = types.Transport(m.v.GetString("transport"))
	cfg.BLEDevice = m.v.GetString("ble_device")
	cfg.SerialPort = m.v.GetString("serial_port")
	cfg.SerialBaud = m.v.GetInt("serial_baud")

	cfg.SandboxMode = m.v.GetBool("sandbox_mode")
	cfg.AllowedRoot = m.v.GetString("allowed_root")
	cfg.ToolProfile = types.ToolProfile(m.v.GetString("tool_profile"))
	cfg.LogLevel = m.v.GetString("log_level")
	cfg.LogPath = m.v.GetString("log_path")
	cfg.AuditLogPath = m.v.GetString("audit_log_path")
	cfg.MetricsAddr = m.v.GetString("metrics_addr")

	cfg.CronIntervalS = m.v.GetInt("cron_interval")
	cfg.CronPrompt = m.v.GetString("cron_prompt")
	cfg.CronMaxRuns = m.v.GetInt("cron_max_runs")
	cfg.HeartbeatS = m.v.GetInt("heartbeat")

	// CLI flags win last, applied only when the user actually passed
	// them — an unset flag must not stomp a file/env value with its
	// zero default.
	if m.flags.Changed("model") {
		cfg.Model, _ = m.flags.GetString("model")
	}
	if m.flags.Changed("provider") {
		p, _ := m.flags.GetString("provider")
		cfg.Provider = types.ParseProvider(p)
	}
	if m.flags.Changed("base-url") {
		cfg.BaseURL, _ = m.flags.GetString("base-url")
	}
	if m.flags.Changed("no-stream") {
		cfg.Streaming = false
	}
	if m.flags.Changed("transport") {
		t, _ := m.flags.GetString("transport")
		cfg.TransportKind = types.Transport(t)
	}
	if m.flags.Changed("serial-port") {
		cfg.SerialPort, _ = m.flags.GetString("serial-port")
		cfg.TransportKind = types.TransportSerial
	}
	if m.flags.Changed("ble-device") {
		cfg.BLEDevice, _ = m.flags.GetString("ble-device")
		cfg.TransportKind = types.TransportBLE
	}
	if m.flags.Changed("cron-interval") {
		cfg.CronIntervalS, _ = m.flags.GetInt("cron-interval")
	}
	if m.flags.Changed("cron-prompt") {
		cfg.CronPrompt, _ = m.flags.GetString("cron-prompt")
	}
	if m.flags.Changed("cron-max-runs") {
		cfg.CronMaxRuns, _ = m.flags.GetInt("cron-max-runs")
	}
	if m.flags.Changed("heartbeat") {
		cfg.HeartbeatS, _ = m.flags.GetInt("heartbeat")
	}

	applyBareEnvVars(&cfg)
	return cfg
}

// prompt returns the one-shot prompt: -p/--prompt if set, else the
// first positional (non-flag) argument.
func (m *Manager) prompt() string {
	if m.flags.Changed("prompt") {
		p, _ := m.flags.GetString("prompt")
		return p
	}
	if args := m.flags.Args(); len(args) > 0 {
		return strings.Join(args, " ")
	}
	return ""
}

// applyBareEnvVars applies the two provider-key environment variables
// that sit outside the KRILLCLAW_* namespace: ANTHROPIC_API_KEY and
// OPENAI_API_KEY, the latter also selecting the openai provider per §6.
func applyBareEnvVars(cfg *types.Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
		cfg.Provider = types.ProviderOpenAIStyle
	}
}

// Validate runs the field-level checks of validation.go against cfg.
func (m *Manager) Validate(cfg types.Config) []error {
	return Validate(cfg)
}
