package carbon

import "github.com/rs/zerolog"

// logger receives data-quality warnings (unknown refrigerant codes, clamped
// quantities). It is silent until SetLogger is called.
var logger = zerolog.Nop()

// SetLogger installs the logger used by this package.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "carbon").Logger()
}
