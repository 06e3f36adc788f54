package config

const (
	defaultBaseDir            = "~/cymap"
	defaultScanPollInterval   = 5
	defaultScanMountWait      = 10
	defaultWorkerLookbackDays = 7
	defaultWorkerIdleInterval = 5
	defaultUpdateRetries      = 3
	defaultWhisperModel       = "medium.en"
	defaultWhisperLanguage    = "en"
	defaultAudioSampleRate    = 16000
	defaultAudioHighPassHz    = 300
	defaultAudioLowPassHz     = 3400
	defaultAudioPrepTimeout   = 120
	defaultLocationsBaseURL   = "https://api.syncromatics.com/portal"
	defaultLocationsInterval  = 5
	defaultLocationsTimeout   = 10
	defaultServerBind         = "127.0.0.1:8000"
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir: defaultBaseDir,
		},
		Scanner: Scanner{
			Groups:       []string{"CYRIDE-CIRC", "CYRIDE-FIXED"},
			Extensions:   []string{".mp3"},
			PollInterval: defaultScanPollInterval,
			MountWait:    defaultScanMountWait,
		},
		Worker: Worker{
			LookbackDays:  defaultWorkerLookbackDays,
			IdleInterval:  defaultWorkerIdleInterval,
			UpdateRetries: defaultUpdateRetries,
		},
		Whisper: Whisper{
			Model:    defaultWhisperModel,
			Language: defaultWhisperLanguage,
		},
		Audio: Audio{
			SampleRate:  defaultAudioSampleRate,
			HighPassHz:  defaultAudioHighPassHz,
			LowPassHz:   defaultAudioLowPassHz,
			PrepTimeout: defaultAudioPrepTimeout,
		},
		Locations: Locations{
			BaseURL:        defaultLocationsBaseURL,
			PollInterval:   defaultLocationsInterval,
			RequestTimeout: defaultLocationsTimeout,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
