package logger

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"paywatch/internal/config"

	"github.com/golang-cz/devslog"
	"github.com/google/uuid"
)

type Logger struct{}

func Init(config *config.Config) Logger {
	slogOpts := &slog.HandlerOptions{}

	if !config.Prod_env {
		slogOpts.Level = slog.LevelDebug
	}

	opts := &devslog.Options{
		HandlerOptions:    slogOpts,
		MaxSlicePrintSize: 4,
		SortKeys:          true,
		NewLineAfterLog:   true,
	}

	logger := slog.New(devslog.NewHandler(os.Stdout, opts))

	slog.SetDefault(logger)

	return Logger{}
}

// example Info("synced batch", "from", 100, "to", 1099)
func (l Logger) Info(message string, args ...any) {
	printLog(LL_INFO, message, caller(), args...)
}

func (l Logger) Error(message string, args ...any) {
	printLog(LL_ERROR, message, caller(), args...)
}

// use only for unrecoverable startup errors
func (l Logger) Fatal(message string, args ...any) {
	printLog(LL_FATAL, message, caller(), args...)
}

func (l Logger) Debug(message string, args ...any) {
	printLog(LL_DEBUG, message, caller(), args...)
}

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	return file + ":" + strconv.Itoa(line)
}

func printLog(ll LogLevel, message string, source string, args ...any) {
	args = append(args, "source", source)
	switch ll {
	case LL_ERROR, LL_FATAL:
		slog.Error(message, args...)
	case LL_INFO:
		slog.Info(message, args...)
	case LL_DEBUG:
		slog.Debug(message, args...)
	}
}

func AnyToStr(t any) string {
	return fmt.Sprintf("%v", t)
}

func GenErrorId() string {
	var errorId string
	uuid, err := uuid.NewRandom()
	if err != nil {
		errorId = NA
	} else {
		errorId = uuid.String()
	}
	return errorId
}
