package config

const (
	defaultConfigPath             = "~/.config/capturedesk/config.toml"
	defaultDataDir                = "~/.local/share/capturedesk"
	defaultLogDir                 = "~/.local/share/capturedesk/logs"
	defaultBind                   = "127.0.0.1:7610"
	defaultServerURL              = "http://127.0.0.1:7610"
	defaultAnalysisTimeoutSeconds = 25
	defaultMaxUploadMiB           = 32
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Server: Server{
			Bind:      defaultBind,
			ServerURL: defaultServerURL,
		},
		Analysis: Analysis{
			TimeoutSeconds: defaultAnalysisTimeoutSeconds,
			MaxUploadMiB:   defaultMaxUploadMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
