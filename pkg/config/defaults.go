package config

// Location defaults.
const (
	DefaultArtifactsDir = "data"
	DefaultOutputDir    = "site"
	DefaultStartDate    = "2024-01-01"
	DefaultReportEntry  = "report.json"
	DefaultStoreFile    = "data.json"
	DefaultStoreBackup  = true
)

// DefaultBrowsers are the browser engines tracked out of the box.
var DefaultBrowsers = []string{"firefox", "chrome"}

// Dashboard defaults.
const (
	DefaultDashboardTitle  = "WebDriver BiDi test results"
	DefaultDashboardTheme  = "light"
	DefaultChangesDays     = 7
	DefaultMinChanges      = 1
	DefaultRenameDistance  = 8
	DefaultDashboardLegend = true
	DefaultPullRequestURL  = "https://github.com/microsoft/playwright/pull/"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint    = ""
	DefaultOTLPInsecure    = false
	DefaultMetricsTextfile = ""
)
