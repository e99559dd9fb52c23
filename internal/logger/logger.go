package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/borg-exporter/internal/printer"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string    // "debug","info","warn","error"
	JSON  bool      // JSON output (log shippers)
	Color bool      // colorize (console)
	Out   io.Writer // default os.Stderr
}

var (
	mu       sync.RWMutex
	zlog     *zap.SugaredLogger
	out      io.Writer = os.Stderr
	p        *printer.ColorPrinter
	color    bool
	jsonOut  bool
	curLevel = zapcore.InfoLevel
	ready    atomic.Bool
)

// Configure sets up the global logger.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	configure(opts)
}

func configure(opts Options) {
	if opts.Out != nil {
		out = opts.Out
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.CallerKey = ""

	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := parseLevel(opts.Level)
	ws := zapcore.AddSync(writerAdapter{out})
	core := zapcore.NewCore(enc, ws, level)

	zlog = zap.New(core).Sugar()
	color = opts.Color && !opts.JSON
	jsonOut = opts.JSON

	if p == nil {
		p = printer.NewColorPrinter()
	}

	ready.Store(true)
}

// SetLevel adjusts current level at runtime ("debug","info","warn","error").
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	configure(Options{Level: level, Out: out, Color: color, JSON: jsonOut})
}

// SetOutput replaces the logger writer (use io.Discard in tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
	configure(Options{Level: curLevel.String(), Out: out, Color: color, JSON: jsonOut})
}

// UseTestMode silences logs during tests.
func UseTestMode() {
	Configure(Options{
		Level: "error",
		Color: false,
		JSON:  false,
		Out:   io.Discard,
	})
}

// Out returns the current output writer (for tables).
func Out() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// ---- Public logging API ----

func Info(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	zlog.Info(paint(p.Info, msg, args...))
	mu.RUnlock()
}

func Success(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	zlog.Info(paint(p.Success, msg, args...))
	mu.RUnlock()
}

func LogError(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	zlog.Error(paint(p.Error, msg, args...))
	mu.RUnlock()
}

func Warn(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	zlog.Warn(paint(p.Warning, msg, args...))
	mu.RUnlock()
}

func Debug(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	zlog.Debug(paint(p.Debug, msg, args...))
	mu.RUnlock()
}

// Sync flushes buffered log entries.
func Sync() {
	if !ensureReady() {
		return
	}
	mu.RLock()
	_ = zlog.Sync()
	mu.RUnlock()
}

// Highlight renders s in bold when console colors are enabled.
func Highlight(s string) string {
	if !ensureReady() {
		return s
	}
	mu.RLock()
	defer mu.RUnlock()
	if !color {
		return s
	}
	return p.Highlight("%s", s)
}

// ---- Tables ----

func CreateTable(headers []string) *tablewriter.Table {
	mu.RLock()
	defer mu.RUnlock()
	t := tablewriter.NewTable(out)
	t.Header(headers)
	return t
}

// ---- internals ----

type writerAdapter struct{ w io.Writer }

func (wa writerAdapter) Write(p []byte) (int, error) { return wa.w.Write(p) }

func paint(colorize func(string, ...interface{}) string, msg string, args ...interface{}) string {
	if color {
		return colorize("%s", sprintf(msg, args...))
	}
	return sprintf(msg, args...)
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		curLevel = zapcore.DebugLevel
	case "info", "":
		curLevel = zapcore.InfoLevel
	case "warn":
		curLevel = zapcore.WarnLevel
	case "error":
		curLevel = zapcore.ErrorLevel
	default:
		curLevel = zapcore.InfoLevel
	}
	return curLevel
}

// ---- helpers ----

func ensureReady() bool {
	if !ready.Load() {
		return false
	}
	if p == nil || zlog == nil {
		return false
	}
	return true
}
