package app

// Config holds runtime wiring options for building the app.
type Config struct {
	Home    string // config directory, e.g. $HOME/.sealink
	Suite   string // key-agreement suite name; empty means x25519
	Verbose bool   // enable debug logging
}
