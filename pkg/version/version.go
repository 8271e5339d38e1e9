package version

// Current defines the application version.
// It defaults to "dev" and is overwritten at build time using -ldflags.
var Current = "dev"

// AppName is reported as the OpenTelemetry service name.
const AppName = "construction-mkp"
