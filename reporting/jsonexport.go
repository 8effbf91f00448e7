package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rhyru9/osgit/core"
)

// ScanStats holds aggregated counters for a discovery run
type ScanStats struct {
	Pages          int `json:"pages"`
	Hits           int `json:"hits"`
	Duplicates     int `json:"duplicate_urls"`
	FilesFetched   int `json:"files_fetched"`
	FetchErrors    int `json:"fetch_errors"`
	Discarded      int `json:"discarded_tokens"`
	RateLimitWaits int `json:"rate_limit_waits"`
	Subdomains     int `json:"subdomains"`
}

// JSONExport represents a structured JSON export
type JSONExport struct {
	Tool       string         `json:"tool"`
	Version    string         `json:"version"`
	Target     string         `json:"target"`
	Extended   bool           `json:"extended"`
	Timestamp  string         `json:"timestamp"`
	Duration   string         `json:"duration"`
	Stats      ScanStats      `json:"stats"`
	Subdomains []string       `json:"subdomains"`
	Findings   []core.Finding `json:"findings,omitempty"`
}

// ExportJSON writes a run summary to a structured JSON file
func ExportJSON(outputPath string, export JSONExport, duration time.Duration) error {
	if export.Tool == "" {
		export.Tool = "osgit"
	}
	export.Timestamp = time.Now().UTC().Format(time.RFC3339)
	export.Duration = duration.Round(time.Millisecond).String()
	if export.Subdomains == nil {
		export.Subdomains = []string{}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return os.WriteFile(outputPath, data, 0644)
}

// ExportJSONL writes findings as JSON Lines (one JSON object per line)
func ExportJSONL(outputPath string, findings []core.Finding) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSONL file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, finding := range findings {
		if err := encoder.Encode(finding); err != nil {
			return fmt.Errorf("failed to encode finding: %w", err)
		}
	}

	return nil
}
