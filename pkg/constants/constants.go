package constants

const (
	AppName = "pms"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "PMS"

	ServiceName = "pms_backend"
)
