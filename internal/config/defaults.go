package config

const (
	defaultRoot                = "."
	defaultDataDir             = "data"
	defaultLogDir              = "logs"
	defaultModelsDir           = "models"
	defaultInterpreter         = "python3"
	defaultProbeTimeoutSeconds = 10
	defaultDashboardEntry      = "src/dashboard/app.py"
	defaultDashboardServer     = "streamlit"
	defaultDashboardPort       = 8501
	defaultCollectorEntry      = "src/data_collection/data_collector.py"
	defaultStartupDelaySeconds = 2
	defaultStopGraceSeconds    = 5
	defaultStoreDriver         = "sqlite"
	defaultStorePath           = "data/deskbuddy.db"
	defaultInterpreterMarker   = "python"
	defaultLogFormat           = "console"
	defaultLogLevel            = "warn"
)

// defaultRequiredModules lists the Python modules the collector and dashboard import.
var defaultRequiredModules = []string{
	"streamlit",
	"cv2",
	"mediapipe",
	"pandas",
	"numpy",
	"plotly",
	"psutil",
	"pynput",
	"sklearn",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	modules := make([]string, len(defaultRequiredModules))
	copy(modules, defaultRequiredModules)
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ModelsDir: defaultModelsDir,
		},
		Python: Python{
			RequiredModules:     modules,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Dashboard: Dashboard{
			Entry:        defaultDashboardEntry,
			ServerModule: defaultDashboardServer,
			Port:         defaultDashboardPort,
			Headless:     false,
		},
		Collector: Collector{
			Entry: defaultCollectorEntry,
		},
		Startup: Startup{
			DelaySeconds:     defaultStartupDelaySeconds,
			StopGraceSeconds: defaultStopGraceSeconds,
		},
		Store: Store{
			Driver: defaultStoreDriver,
			Path:   defaultStorePath,
		},
		Status: Status{
			InterpreterMarker: defaultInterpreterMarker,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
