package main

import (
	"flag"
	"io"
)

type AppFlags struct {
	GlobalConfigFile string
	StartURL         string
	WaitEndpoint     string
	ExpectedCount    int
	OutputFile       string
	WaitTimeoutSecs  int
	Timings          bool
}

func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("feedtap", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	startURL := fs.String("url", "", "Page to open (overrides run_config.start_url)")
	startURLAlias := fs.String("u", "", "Alias for -url")

	waitEndpoint := fs.String("endpoint", "", "Endpoint to wait for, e.g. feed-list or search-results (overrides run_config.wait_endpoint)")
	waitEndpointAlias := fs.String("e", "", "Alias for -endpoint")

	expectedCount := fs.Int("count", 0, "Number of responses to wait for (overrides run_config.expected_count)")
	outputFile := fs.String("output", "", "Write the JSON report to this file instead of stdout")
	outputFileAlias := fs.String("o", "", "Alias for -output")

	waitTimeout := fs.Int("timeout", 0, "Seconds to wait per attempt (overrides monitor_config.default_wait_timeout_secs)")
	timings := fs.Bool("timings", false, "Log the page's fetch/xhr resource timings when the wait is not satisfied")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		StartURL:         firstNonEmpty(*startURL, *startURLAlias),
		WaitEndpoint:     firstNonEmpty(*waitEndpoint, *waitEndpointAlias),
		ExpectedCount:    *expectedCount,
		OutputFile:       firstNonEmpty(*outputFile, *outputFileAlias),
		WaitTimeoutSecs:  *waitTimeout,
		Timings:          *timings,
	}
	return flags, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
