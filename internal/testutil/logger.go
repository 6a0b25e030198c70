package testutil

import (
	"io"

	"github.com/dtroode/postit-wall/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
