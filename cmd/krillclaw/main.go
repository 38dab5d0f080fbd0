// Command krillclaw is the CLI/scheduler driver: it loads configuration
// (§6), wires the LLM client, tool dispatcher, context-window manager,
// and ReAct loop together, and runs either a single one-shot turn or a
// scheduler-driven sequence of ticks.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhardwajRahul/krillclaw/internal/agent"
	"github.com/bhardwajRahul/krillclaw/internal/config"
	"github.com/bhardwajRahul/krillclaw/internal/logging"
	"github.com/bhardwajRahul/krillclaw/internal/scheduler"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// version is stamped at build time for release builds; the fallback
// here covers local development builds.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	mgr := config.New()
	if err := mgr.Flags().Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if help, _ := mgr.Flags().GetBool("help"); help {
		fmt.Fprintln(stdout, "krillclaw — a minimal autonomous agent runtime")
		fmt.Fprintln(stdout, mgr.Flags().FlagUsages())
		return 0
	}
	if showVersion, _ := mgr.Flags().GetBool("version"); showVersion {
		fmt.Fprintln(stdout, "krillclaw", version)
		return 0
	}

	loaded, err := mgr.Load()
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	cfg := loaded.Config
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stderr, e)
		}
		return 1
	}

	appLog, err := logging.NewAppLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "logging:", err)
		return 1
	}
	defer appLog.Sync()
	auditLog := logging.NewAuditLogger(cfg.AuditLogPath)
	defer auditLog.Sync()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	rt, err := buildRuntime(cfg, auditLog)
	if err != nil {
		fmt.Fprintln(stderr, "startup:", err)
		return 1
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runTurn := func(ctx context.Context, prompt string) agent.Result {
		corrID := logging.NewCorrelationID()
		ctx = logging.ContextWithCorrelationID(ctx, corrID)
		conv := &types.Conversation{}

		onDelta := func(s string) { fmt.Fprint(stdout, s) }
		onToolCall := func(name string) { fmt.Fprintf(stderr, "→ %s\n", name) }

		l := agent.New(rt.client, rt.executor, cfg, rt.toolDefs, onDelta, onToolCall).WithAudit(auditLog)
		res := l.Run(ctx, conv, prompt)
		if res.Warning != "" {
			fmt.Fprintln(stderr, "warning:", res.Warning)
		}
		return res
	}

	if loaded.Prompt != "" {
		res := runTurn(ctx, loaded.Prompt)
		fmt.Fprintln(stdout, res.Text)
		if res.StopReason == types.StopUnknown {
			return 1
		}
		return 0
	}

	if cfg.CronIntervalS <= 0 && cfg.HeartbeatS <= 0 {
		fmt.Fprintln(stderr, "nothing to do: no prompt given and no --cron-interval/--heartbeat configured")
		return 1
	}

	sched := scheduler.New(cfg, nil)
	for ctx.Err() == nil {
		if sched.ShouldRunAgent() {
			runTurn(ctx, sched.Prompt())
		}
		if sched.ShouldHeartbeat() {
			appLog.Info("heartbeat")
		}
		sched.SleepUntilNext(ctx)
	}
	return 0
}

// serveMetrics exposes the prometheus collectors of internal/metrics on
// addr until the process exits; a bind failure is non-fatal since
// metrics are observability, not a load-bearing dependency of the loop.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintln(os.Stderr, "metrics server:", err)
	}
}
