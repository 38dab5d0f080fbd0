package types

// Transport enumerates the carriers the LLM client and bridge can run over.
type Transport string

const (
	TransportHTTP   Transport = "http"
	TransportBLE    Transport = "ble"
	TransportSerial Transport = "serial"
)

// ToolProfile names the tool table the driver constructs at startup.
// All three tables are compiled into the binary; the profile is read
// once when the runtime is built and is not switched while it runs.
type ToolProfile string

const (
	ProfileCoding    ToolProfile = "coding"
	ProfileIoT       ToolProfile = "iot"
	ProfileRobotics  ToolProfile = "robotics"
)

// Config holds every option the runtime recognises, per spec §3/§6 plus
// the ambient additions of SPEC_FULL.md §3.1.
type Config struct {
	APIKey   string
	Provider Provider
	Model    string
	BaseURL  string // optional override

	MaxTokens        int // per-response cap
	MaxContextTokens int // window size
	MaxTurns         int // hard loop cap

	SystemPrompt string
	Streaming    bool // forced off for Ollama

	TransportKind Transport
	BLEDevice     string
	SerialPort    string
	SerialBaud    int

	// SPEC_FULL.md ambient additions
	SandboxMode  bool
	AllowedRoot  string
	ToolProfile  ToolProfile
	LogLevel     string
	LogPath      string
	AuditLogPath string
	MetricsAddr  string

	// Scheduler
	CronIntervalS int
	CronPrompt    string
	CronMaxRuns   int
	HeartbeatS    int
}

// DefaultConfig returns the baseline configuration before file/env/CLI
// layering is applied.
func DefaultConfig() Config {
	return Config{
		Provider:         ProviderClaude,
		Model:            "claude-sonnet-4-20250514",
		MaxTokens:        4096,
		MaxContextTokens: 180000,
		MaxTurns:         10,
		Streaming:        true,
		TransportKind:    TransportHTTP,
		SerialBaud:       115200,
		ToolProfile:      ProfileCoding,
		LogLevel:         "info",
		LogPath:          "logs/app.log",
		AuditLogPath:     "logs/audit.log",
		MetricsAddr:      ":9090",
	}
}
