package maincmd

import "github.com/caarlos0/env/v6"

// config holds the environment-driven debug and REPL-tuning knobs: these
// translate what would otherwise be compile-time debug flags baked into
// the binary into process environment variables, so the same binary can
// be built once and debugged by setting a var rather than rebuilding.
type config struct {
	DebugPrintCode      bool `env:"EMBER_DEBUG_PRINT_CODE" envDefault:"false"`
	DebugTraceExecution bool `env:"EMBER_DEBUG_TRACE_EXECUTION" envDefault:"false"`
	StdinBuffer         int  `env:"EMBER_STDIN_BUFFER" envDefault:"1024"`
}

func loadConfig() (config, error) {
	var c config
	if err := env.Parse(&c); err != nil {
		return config{}, err
	}
	return c, nil
}
