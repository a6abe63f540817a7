package spanassert

// Version is the harness release version, printed by the CLI.
var Version = "0.1.0"
