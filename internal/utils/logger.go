package utils

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// InitLogger installs the process logger. Production uses JSON output on
// stdout; any other env gets the colored development encoder.
func InitLogger(env, level string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	built, err := config.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		return err
	}
	SetLogger(built)
	return nil
}

// SetLogger replaces the process logger, e.g. with zaptest in tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	_ = Logger().Sync()
}

func format(message string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

func LogInfo(component, message string, args ...interface{}) {
	Logger().Info(format(message, args), zap.String("component", component))
}

func LogSuccess(component, message string, args ...interface{}) {
	Logger().Info(format(message, args), zap.String("component", component), zap.Bool("success", true))
}

func LogWarning(component, message string, args ...interface{}) {
	Logger().Warn(format(message, args), zap.String("component", component))
}

func LogError(component, message string, err error) {
	if err != nil {
		Logger().Error(message, zap.String("component", component), zap.Error(err))
		return
	}
	Logger().Error(message, zap.String("component", component))
}

func LogDebug(component, message string, args ...interface{}) {
	Logger().Debug(format(message, args), zap.String("component", component))
}
