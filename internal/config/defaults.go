package config

const (
	defaultDataDir     = "~/.local/share/ctkirep"
	defaultLogDir      = "~/.local/share/ctkirep/logs"
	defaultUploadDir   = "~/.local/share/ctkirep/uploads"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultLockTimeout = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			UploadDir: defaultUploadDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Ingest: Ingest{
			LockTimeout: defaultLockTimeout,
		},
	}
}
