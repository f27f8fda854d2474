package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/scigolabs/nbtext/pkg/errors"
)

// InstallWarnSink routes library warnings through a zerolog logger writing to
// w (stderr when nil). Warnings that implement zerolog.LogObjectMarshaler are
// emitted with their structured fields; others fall back to the error string.
func InstallWarnSink(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().Timestamp().Str("component", "nbtext").Logger()

	errors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event.EmbedObject(obj).Msg("warning")
			return
		}
		event.Err(warning).Msg("warning")
	})

	return logger
}
