package config

const (
	defaultDataDir         = "~/.local/share/mediacat"
	defaultLogDir          = "~/.local/share/mediacat/logs"
	defaultTrashDir        = "~/.local/share/mediacat/trash"
	defaultHashPrefixBytes = 1 << 20
	defaultBatchSize       = 100
	defaultDedupeStrategy  = "oldest"
	defaultDedupeMarker    = "!"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// DefaultExtensions lists the media extensions recognized out of the box.
var DefaultExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			TrashDir: defaultTrashDir,
		},
		Scanner: Scanner{
			Extensions:      append([]string(nil), DefaultExtensions...),
			HashPrefixBytes: defaultHashPrefixBytes,
		},
		Reconcile: Reconcile{
			BatchSize: defaultBatchSize,
		},
		Dedupe: Dedupe{
			Strategy:    defaultDedupeStrategy,
			Marker:      defaultDedupeMarker,
			RemoveFiles: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
