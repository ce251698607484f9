// Command sentinel-demo is a single-shot CLI over the sentinel facade:
// read text (stdin or an argument), redact it with the built-in detector
// set plus an optional policy file, and print the redacted text and a
// hit-report table. Scaled down from guard/cmd/guard-server/main.go's
// env-var config + zap logger setup to a one-shot binary instead of a
// long-running server.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tracewall/sentinel"
	"github.com/tracewall/sentinel/internal/audit"
	"github.com/tracewall/sentinel/internal/engine"
)

func main() {
	logger := mustBuildLogger(envOrDefault("SENTINEL_LOG_LEVEL", "warn"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	text, err := readInput(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "sentinel-demo:", err)
		os.Exit(1)
	}

	opts := []sentinel.Option{
		sentinel.WithBuiltinDetectors(),
		sentinel.WithLogger(logger),
	}
	if policyPath := os.Getenv("SENTINEL_POLICY_FILE"); policyPath != "" {
		policy, err := loadPolicy(policyPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sentinel-demo: loading policy:", err)
			os.Exit(1)
		}
		opts = append(opts, sentinel.WithPolicy(policy))
	}
	if dsn := os.Getenv("SENTINEL_AUDIT_CLICKHOUSE_DSN"); dsn != "" {
		w, err := audit.NewClickHouseWriter(dsn, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sentinel-demo: audit writer:", err)
			os.Exit(1)
		}
		defer w.Close()
		opts = append(opts, sentinel.WithAuditWriter(w))
	}

	s, err := sentinel.Use(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sentinel-demo:", err)
		os.Exit(1)
	}

	trust := engine.Trust(envOrDefault("SENTINEL_TRUST", string(engine.TrustUser)))
	out, hits, err := s.Redact(text, trust)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sentinel-demo: redact:", err)
		os.Exit(1)
	}

	fmt.Println(color.New(color.Bold).Sprint("Redacted output:"))
	fmt.Println(out)
	fmt.Println()

	if len(hits) == 0 {
		fmt.Println(color.GreenString("No hits."))
		return
	}
	printHitTable(hits)
}

func printHitTable(hits []engine.Hit) {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Detector", "Category", "Action", "Confidence", "Span"})
	for _, h := range hits {
		conf := strconv.Itoa(h.Confidence)
		if h.Confidence >= 80 {
			conf = color.RedString(conf)
		} else if h.Confidence >= 50 {
			conf = color.YellowString(conf)
		}
		tw.Append([]string{
			h.DetectorID,
			string(h.Category),
			string(h.Action),
			conf,
			fmt.Sprintf("[%d,%d)", h.OrigStart, h.OrigEnd),
		})
	}
	tw.Render()
}

// readInput reads the text to scan from the first CLI argument, or stdin
// if no argument is given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}

func loadPolicy(path string) (*engine.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.ParsePolicyDocument(raw)
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
