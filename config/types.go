package config

import "time"

type AppConfig struct {
	DBDriver    string            `yaml:"db_driver" env:"CYBERGUARD_DB_DRIVER" env-default:"sqlite"`
	DBPath      string            `yaml:"db_path" env:"CYBERGUARD_DB_PATH" env-default:"data/cyberguard.db"`
	DBURL       string            `yaml:"db_url" env:"CYBERGUARD_DB_URL"`
	ListenAddr  string            `yaml:"listen_addr" env:"CYBERGUARD_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	AppEnv      string            `yaml:"app_env" env:"CYBERGUARD_APP_ENV"`
	Submissions SubmissionsConfig `yaml:"submissions"`
	Security    SecurityConfig    `yaml:"security"`
}

type SubmissionsConfig struct {
	// RateLimit is the maximum number of reports accepted from one IP within
	// the rate window; zero disables the limit.
	RateLimit         int    `yaml:"rate_limit" env:"CYBERGUARD_SUBMISSIONS_RATE_LIMIT" env-default:"10"`
	RateWindowMinutes int    `yaml:"rate_window_minutes" env:"CYBERGUARD_SUBMISSIONS_RATE_WINDOW_MINUTES" env-default:"60"`
	DefaultCountry    string `yaml:"default_country" env:"CYBERGUARD_SUBMISSIONS_DEFAULT_COUNTRY" env-default:"Tanzania"`
	DefaultCurrency   string `yaml:"default_currency" env:"CYBERGUARD_SUBMISSIONS_DEFAULT_CURRENCY" env-default:"TZS"`
	SourceTag         string `yaml:"source_tag" env:"CYBERGUARD_SUBMISSIONS_SOURCE_TAG" env-default:"web_form"`
}

type SecurityConfig struct {
	TrustedProxies []string `yaml:"trusted_proxies" env:"CYBERGUARD_SECURITY_TRUSTED_PROXIES" env-separator:","`
}

func (c SubmissionsConfig) RateWindow() time.Duration {
	if c.RateWindowMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.RateWindowMinutes) * time.Minute
}
