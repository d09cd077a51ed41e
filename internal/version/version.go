package version

const (
	AppName    = "Musa"
	AppVersion = "0.3.0"
)
