package reporting

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rhyru9/osgit/core"
)

// ExportCSV writes findings to a CSV file
func ExportCSV(outputPath string, findings []core.Finding) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"Subdomain", "Source", "Timestamp"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range findings {
		if err := w.Write([]string{r.Subdomain, r.Source, r.Timestamp}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
