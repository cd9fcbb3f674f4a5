package logsvc

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/gradebook/core"
)

// Logger writes structured logs with zap and forwards them to Rollbar when a token is set.
type Logger struct {
	zap     *zap.SugaredLogger
	rollbar bool
}

var _ core.Logger = (*Logger)(nil)

// New returns a development (console, debug level) logger when conf.Debug is set, a JSON
// production logger otherwise. Rollbar reporting is enabled outside of debug and test mode.
func New(conf *core.Config) (*Logger, error) {
	zconf := zap.NewProductionConfig()
	if conf.Debug {
		zconf = zap.NewDevelopmentConfig()
		zconf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zconf.DisableStacktrace = true
	base, err := zconf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	enabled := conf.RollbarToken != "" && !conf.Debug && !conf.TestMode
	if enabled {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetServerHost(conf.AppName)
		rollbar.SetCodeVersion(conf.Build)
		rollbar.SetStackTracer(errors.StackTracer)
	}
	rollbar.SetEnabled(enabled)

	return NewFromZap(base.Sugar().With("app", conf.AppName, "env", conf.Env), enabled), nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.SugaredLogger, reportRollbar bool) *Logger {
	return &Logger{zap: l, rollbar: reportRollbar}
}

// Named returns a child logger whose entries carry the "logger" name, eg. "api" or "db".
func (l *Logger) Named(name string) *Logger {
	return NewFromZap(l.zap.Named(name), l.rollbar)
}

// Sync flushes buffered logs and waits for pending Rollbar reports.
func (l *Logger) Sync() {
	_ = l.zap.Sync()
	if l.rollbar {
		rollbar.Wait()
	}
}

// fields turns args (errors, map[string]interface{} extras, key/value pairs) into zap fields.
func fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			kvs = append(kvs, zap.Error(arg))
		case map[string]interface{}:
			for k, v := range arg {
				kvs = append(kvs, k, v)
			}
		case string:
			if i+1 < len(args) {
				kvs = append(kvs, arg, args[i+1])
				i++
			} else {
				kvs = append(kvs, "extra", arg)
			}
		default:
			kvs = append(kvs, fmt.Sprintf("arg%d", i), arg)
		}
	}
	return kvs
}

// rollbarArgs keeps what Rollbar understands: the message, errors and extras.
func rollbarArgs(msg string, args []interface{}) []interface{} {
	extras := make(map[string]interface{})
	newArgs := []interface{}{msg}
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			newArgs = append(newArgs, arg)
		case map[string]interface{}:
			for k, v := range arg {
				extras[k] = v
			}
		case string:
			if i+1 < len(args) {
				extras[arg] = args[i+1]
				i++
			}
		}
	}
	if len(extras) > 0 {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.zap.Debugw(msg, fields(args)...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.zap.Infow(msg, fields(args)...)
	if l.rollbar {
		rollbar.Info(rollbarArgs(msg, args)...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zap.Warnw(msg, fields(args)...)
	if l.rollbar {
		rollbar.Warning(rollbarArgs(msg, args)...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.zap.Errorw(msg, fields(args)...)
	if l.rollbar {
		rollbar.Error(rollbarArgs(msg, args)...)
	}
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.rollbar {
		rollbar.Critical(rollbarArgs(msg, args)...)
		rollbar.Wait()
	}
	l.zap.Fatalw(msg, fields(args)...)
}
