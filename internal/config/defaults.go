package config

const (
	defaultConfigPath     = "~/.config/interlinear/config.toml"
	defaultAudioTokens    = "data/audio-tokens.json"
	defaultSourceTokens   = "data/source-tokens.json"
	defaultJournalDB      = "~/.local/share/interlinear/journal.db"
	defaultLogFile        = "~/.local/share/interlinear/interlinear.log"
	defaultRequireSource  = true
	defaultStartMode      = "select"
	defaultPlayerBackend  = "clock"
	defaultMPVSocket      = "/tmp/interlinear-mpv.sock"
	defaultTickIntervalMs = 50
	defaultSkipSeconds    = 5
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioTokens:  defaultAudioTokens,
			SourceTokens: defaultSourceTokens,
			JournalDB:    defaultJournalDB,
			LogFile:      defaultLogFile,
		},
		Alignment: Alignment{
			RequireSource: defaultRequireSource,
			StartMode:     defaultStartMode,
		},
		Player: Player{
			Backend:        defaultPlayerBackend,
			MPVSocket:      defaultMPVSocket,
			TickIntervalMs: defaultTickIntervalMs,
			SkipSeconds:    defaultSkipSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
