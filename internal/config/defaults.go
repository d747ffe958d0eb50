package config

const (
	defaultStatsDir              = "~/.local/share/cleancut/stats"
	defaultLogDir                = "~/.local/share/cleancut/logs"
	defaultRunLogPath            = "~/.local/share/cleancut/runs.db"
	defaultDetector              = "content"
	defaultContentThreshold      = 30.0
	defaultFadeThreshold         = 12.0
	defaultAdaptiveThreshold     = 3.0
	defaultMinContentValue       = 15.0
	defaultWindowWidth           = 2
	defaultMinSceneLen           = 15
	defaultSceneMergeLen         = -1
	defaultFFprobeBinary         = "ffprobe"
	defaultFFprobeTimeoutSeconds = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir(),
			StatsDir: defaultStatsDir,
			LogDir:   defaultLogDir,
		},
		Detection: Detection{
			Detector:          defaultDetector,
			ContentThreshold:  defaultContentThreshold,
			FadeThreshold:     defaultFadeThreshold,
			AdaptiveThreshold: defaultAdaptiveThreshold,
			MinContentValue:   defaultMinContentValue,
			WindowWidth:       defaultWindowWidth,
			MinSceneLen:       defaultMinSceneLen,
		},
		Scene: Scene{
			MergeLen:         defaultSceneMergeLen,
			MergeOverlapping: true,
		},
		RunLog: RunLog{
			Enabled: true,
			Path:    defaultRunLogPath,
		},
		FFprobe: FFprobe{
			Binary:         defaultFFprobeBinary,
			TimeoutSeconds: defaultFFprobeTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
