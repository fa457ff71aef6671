package config

type Config struct {
	Agent        AgentConfig        `yaml:"agent"`
	Dashboard    DashboardConfig    `yaml:"dashboard"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge"`
	Troubleshoot TroubleshootConfig `yaml:"troubleshoot"`
	Report       ReportConfig       `yaml:"report"`
}

type AgentConfig struct {
	LogLevel           string `yaml:"log_level"`
	CollectionInterval int    `yaml:"collection_interval"` // in seconds
	DataDir            string `yaml:"data_dir"`            // when set, cycle results are mirrored here as JSON
}

type DashboardConfig struct {
	BaseURL               string `yaml:"base_url"`
	APIKey                string `yaml:"api_key"`
	OrganizationID        string `yaml:"organization_id"`
	TimeoutSeconds        int    `yaml:"timeout_seconds"`
	MaxConcurrentRequests int    `yaml:"max_concurrent_requests"`
	MaxRetries            int    `yaml:"max_retries"`
	PerPage               int    `yaml:"per_page"`
	VerifySSL             bool   `yaml:"verify_ssl"`
}

type KnowledgeConfig struct {
	ContentPath string `yaml:"content_path"` // overrides the embedded topic bundle
}

type TroubleshootConfig struct {
	ValidationTimeoutSeconds int      `yaml:"validation_timeout_seconds"`
	Networks                 []string `yaml:"networks"`     // network IDs or names to watch; empty watches every network
	SSIDNumbers              []int    `yaml:"ssid_numbers"` // SSID numbers to inspect; empty inspects all configured SSIDs
}

type ReportConfig struct {
	Enabled        bool   `yaml:"enabled"`
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}
