package internal

import "io"

// Mode selects what Run does.
type Mode string

// Run modes.
const (
	ModeMigrate Mode = "migrate"
	ModeWatch   Mode = "watch"
	ModeServe   Mode = "serve"
	ModeMCP     Mode = "mcp"
	ModeVerify  Mode = "verify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mode    Mode
	version string
	stdout  io.Writer
	color   bool

	dryRun  bool
	diff    bool
	force   bool
	jsonOut bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode sets the run mode. The default is ModeMigrate.
func WithMode(m Mode) Option {
	return func(a *application) {
		a.mode = m
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithOutput sets where the human-readable report goes. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithColor enables styled report output.
func WithColor(on bool) Option {
	return func(a *application) {
		a.color = on
	}
}

// WithDryRun converts without writing anything.
func WithDryRun(on bool) Option {
	return func(a *application) {
		a.dryRun = on
	}
}

// WithDiff prints a line diff per document. Only meaningful with WithDryRun.
func WithDiff(on bool) Option {
	return func(a *application) {
		a.diff = on
	}
}

// WithForce reconverts sources the journal reports as unchanged.
func WithForce(on bool) Option {
	return func(a *application) {
		a.force = on
	}
}

// WithJSON prints the report as JSON instead of status lines.
func WithJSON(on bool) Option {
	return func(a *application) {
		a.jsonOut = on
	}
}
