package config

const (
	defaultDataDir                = "~/.local/share/huella"
	defaultLogDir                 = "~/.local/share/huella/logs"
	defaultCaptureHelper          = "huella-fpcapture"
	defaultEnrollTimeoutSeconds   = 120
	defaultIdentifyTimeoutSeconds = 60
	defaultPrinterWidth           = 40
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
		Capture: Capture{
			HelperBinary:           defaultCaptureHelper,
			EnrollTimeoutSeconds:   defaultEnrollTimeoutSeconds,
			IdentifyTimeoutSeconds: defaultIdentifyTimeoutSeconds,
			MonitorReader:          false,
		},
		Printer: Printer{
			Enabled: false,
			Width:   defaultPrinterWidth,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
