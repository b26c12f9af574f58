package di

// Keys under which the framework binds its own services. Providers add
// their own keys next to these.
type NameSet struct {
	Application string
	Config      string
	Logger      string
	Components  string
	HTTPServer  string
	Tracer      string
	Meter       string
}

// Names holds the framework's binding keys.
var Names = NameSet{
	Application: "app",
	Config:      "config",
	Logger:      "logger",
	Components:  "components",
	HTTPServer:  "http_server",
	Tracer:      "tracer",
	Meter:       "meter",
}
