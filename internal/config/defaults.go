package config

const (
	defaultConfigPath     = "~/.config/cdshelf/config.toml"
	projectConfigName     = "cdshelf.toml"
	defaultDataDir        = "~/.local/share/cdshelf"
	defaultLogDir         = "~/.local/share/cdshelf/logs"
	defaultBackend        = BackendSQLite
	defaultSlotKey        = "cds"
	defaultExportFilename = "cds.txt"
	defaultExportIndent   = 2
	defaultLocale         = "pt-BR"
	defaultCurrencySymbol = "R$"
	defaultFavoriteMarker = "★"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Storage backends understood by the slot package.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend: defaultBackend,
			Key:     defaultSlotKey,
		},
		Export: Export{
			Filename: defaultExportFilename,
			Indent:   defaultExportIndent,
		},
		Display: Display{
			Locale:         defaultLocale,
			CurrencySymbol: defaultCurrencySymbol,
			FavoriteMarker: defaultFavoriteMarker,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
