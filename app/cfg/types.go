package cfg

type Cfg struct {
	// Tracked entity
	CompanyName string
	Aliases     []string
	StockCode   string
	AlertHeader string

	// Source configuration
	Sources      []string
	LookbackDays int
	FetchDetail  bool

	// Notification channels
	TelegramToken  string
	TelegramChatID int64
	WebhookURLs    []string

	// Durable state
	DBPath    string
	PruneDays int

	// Classifier rules
	RulesFile string

	// HTTP behavior
	HTTPTimeout   int
	RetryAttempts int
	UserAgent     string

	// Run behavior
	RunTimeout int
	TestNotify bool

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
