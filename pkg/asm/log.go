package asm

import (
	"context"
	"log/slog"
)

// LevelTrace sits below Debug and carries one record per source line.
const LevelTrace slog.Level = slog.LevelDebug - 4

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
