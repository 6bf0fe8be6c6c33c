package log

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	encConfig := zap.NewDevelopmentEncoderConfig()
	encConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encConfig.EncodeCaller = nil
	encConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.StampMicro))
	}

	encoder := zapcore.NewConsoleEncoder(encConfig)

	stderr, closer, err := zap.Open("stderr")
	if err != nil {
		closer()
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	if os.Getenv("DEBUG") != "" {
		level.SetLevel(zapcore.DebugLevel)
	}

	// Progress goes to stderr so that stdout stays free for the report.
	core := zapcore.NewCore(encoder, stderr, level)
	logger = zap.New(core, zap.ErrorOutput(stderr))
}

// SetLevel changes the minimum level of the process logger. It has no effect
// when DEBUG is set.
func SetLevel(l zapcore.Level) {
	if os.Getenv("DEBUG") != "" {
		return
	}
	level.SetLevel(l)
}

// Level returns the current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

// S returns a *[zap.SugaredLogger].
func S() *zap.SugaredLogger {
	return logger.Sugar()
}

// L returns a *[zap.Logger].
func L() *zap.Logger {
	return logger
}
