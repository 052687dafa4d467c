package catalog

// Config is read from the environment by kit.LoadConfig.
type Config struct {
	DataDir    string `env:"CATALOG_DATA_DIR" envDefault:"data" validate:"required"`
	ReportsDir string `env:"CATALOG_REPORTS_DIR" envDefault:"reports" validate:"required"`
	TempDir    string `env:"CATALOG_TEMP_DIR" envDefault:"tmp" validate:"required"`

	ItemFilePrefix     string `env:"CATALOG_ITEM_PREFIX" envDefault:"product" validate:"required"`
	ReviewFileTemplate string `env:"CATALOG_REVIEW_FILE" envDefault:"reviews%d.txt" validate:"required,contains=%d"`
	ReportFileTemplate string `env:"CATALOG_REPORT_FILE" envDefault:"product%d_%s_report.txt" validate:"required,contains=%d,contains=%s"`

	// Empty patterns select DefaultItemPattern and DefaultReviewPattern.
	ItemPattern   string `env:"CATALOG_ITEM_PATTERN"`
	ReviewPattern string `env:"CATALOG_REVIEW_PATTERN"`
	MaxRecordSize int    `env:"CATALOG_MAX_RECORD_SIZE" envDefault:"65536" validate:"gte=1024"`

	DefaultLocale string `env:"CATALOG_DEFAULT_LOCALE" envDefault:"en-GB" validate:"oneof=en-GB en-US pt-BR"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	SnapshotDSN    string `env:"SNAPSHOT_DSN"`
	RestoreOnStart bool   `env:"CATALOG_RESTORE_ON_START" envDefault:"false"`
	DumpOnExit     bool   `env:"CATALOG_DUMP_ON_EXIT" envDefault:"false"`

	MetricsFile string `env:"METRICS_FILE"`
}
