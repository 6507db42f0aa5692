package report

import "github.com/rs/zerolog"

// logger is used by the pure helpers in this package. Service carries its
// own logger. It is silent until SetLogger is called.
var logger = zerolog.Nop()

// SetLogger installs the logger used by this package.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "report").Logger()
}
