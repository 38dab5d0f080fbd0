package config

import (
	"github.com/spf13/viper"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// applyDefaults seeds v with types.DefaultConfig()'s values under the
// same dotted keys unmarshalConfig reads back, so an empty environment
// and no config file still produce a fully populated Config.
func applyDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("model", d.Model)
	v.SetDefault("provider", d.Provider.String())
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("max_context_tokens", d.MaxContextTokens)
	v.SetDefault("max_turns", d.MaxTurns)
	v.SetDefault("system_prompt", d.SystemPrompt)
	v.SetDefault("streaming", d.Streaming)
	v.SetDefault("transport", string(d.TransportKind))
	v.SetDefault("ble_device", d.BLEDevice)
	v.SetDefault("serial_port", d.SerialPort)
	v.SetDefault("serial_baud", d.SerialBaud)

	v.SetDefault("sandbox_mode", d.SandboxMode)
	v.SetDefault("allowed_root", d.AllowedRoot)
	v.SetDefault("tool_profile", string(d.ToolProfile))
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("audit_log_path", d.AuditLogPath)
	v.SetDefault("metrics_addr", d.MetricsAddr)

	v.SetDefault("cron_interval", d.CronIntervalS)
	v.SetDefault("cron_prompt", d.CronPrompt)
	v.SetDefault("cron_max_runs", d.CronMaxRuns)
	v.SetDefault("heartbeat", d.HeartbeatS)
}
