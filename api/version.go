package api

// Version is the service version reported by the root endpoint. Overridden
// at build time with -ldflags.
var Version = "1.0.0"
