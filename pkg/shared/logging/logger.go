// 指示: miu200521358
// Package logging はレベル付きのログ出力を提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	LOG_LEVEL_DEBUG LogLevel = iota
	LOG_LEVEL_INFO
	LOG_LEVEL_WARN
	LOG_LEVEL_ERROR
)

// ILogger はログ出力契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	Level() LogLevel
	IsLevelEnabled(level LogLevel) bool
}

// Logger は slog を用いたロガーを表す。
type Logger struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger = NewLogger(nil)
)

// NewLogger はロガーを生成する。出力先未指定時は標準エラーへ出力する。
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		level:  level,
		logger: slog.New(handler).With(slog.String("component", "mu_avatar_tinker")),
	}
}

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。nil の場合は何もしない。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// ParseLogLevel は名前からログレベルを解決する。
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LOG_LEVEL_DEBUG, nil
	case "", "INFO":
		return LOG_LEVEL_INFO, nil
	case "WARN", "WARNING":
		return LOG_LEVEL_WARN, nil
	case "ERROR":
		return LOG_LEVEL_ERROR, nil
	}
	return LOG_LEVEL_INFO, fmt.Errorf("ログレベルが不正です: %s", name)
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(slog.LevelDebug, format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(slog.LevelInfo, format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(slog.LevelWarn, format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(slog.LevelError, format, params...)
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(toSlogLevel(level))
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() LogLevel {
	switch l.level.Level() {
	case slog.LevelDebug:
		return LOG_LEVEL_DEBUG
	case slog.LevelWarn:
		return LOG_LEVEL_WARN
	case slog.LevelError:
		return LOG_LEVEL_ERROR
	default:
		return LOG_LEVEL_INFO
	}
}

// IsLevelEnabled は指定レベルが出力対象か判定する。
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	return l.logger.Enabled(context.Background(), toSlogLevel(level))
}

func (l *Logger) log(level slog.Level, format string, params ...any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	l.logger.Log(context.Background(), level, fmt.Sprintf(format, params...))
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case LOG_LEVEL_WARN:
		return slog.LevelWarn
	case LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
