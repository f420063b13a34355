package clients

import "time"

// APIConfig locates the plot generator's HTTP API. Paths use resty path
// parameters; "{id}" is replaced with the book or user id.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	BookPath    string `yaml:"book_path"`
	ProfilePath string `yaml:"profile_path"`
}

type HTTPClientOptions struct {
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	TimeOut          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
}

func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:     "http://localhost:3000",
		BookPath:    "/api/book/{id}",
		ProfilePath: "/api/profile/{id}",
	}
}

func DefaultHTTPClientOptions() HTTPClientOptions {
	return HTTPClientOptions{
		RetryCount:       3,
		RetryWaitTime:    2 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		TimeOut:          30 * time.Second,
		UserAgent:        "plotbook/1.0",
	}
}
