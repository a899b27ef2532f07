// Command validate prints an offline report for an existing readings file:
// row count, per-row safe-range warnings, and per-zip summaries with
// verdicts. Exits non-zero when any zip carries an Alert verdict, so it
// can gate data imports in CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/store"
)

func main() {
	file := flag.String("file", "water_quality_readings.csv", "readings CSV to check")
	flag.Parse()

	alert, err := run(*file)
	if err != nil {
		log.Fatal(err)
	}
	if alert {
		os.Exit(1)
	}
}

func run(path string) (alert bool, err error) {
	st := store.NewCSVStore(path)
	readings, err := st.LoadAll(context.Background())
	if err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}

	fmt.Printf("%s: %d readings\n", path, len(readings))

	warned := 0
	for i, r := range readings {
		for _, w := range domain.ValidateReading(r) {
			fmt.Printf("  row %d (%s %s): %s\n", i, r.Zipcode, r.Date.Format(domain.DateLayout), w)
			warned++
		}
	}
	if warned == 0 {
		fmt.Println("  all rows within safe ranges")
	}

	fmt.Println("per-zip summaries:")
	for _, s := range domain.Summarize(readings) {
		verdicts := domain.Classify(s)
		overall := "Safe"
		if !s.OverallSafe() {
			overall = "ALERT"
			alert = true
		}
		fmt.Printf("  %s (%d readings): %s\n", s.Zipcode, s.Readings, overall)
		for _, sr := range domain.SafeRanges {
			fmt.Printf("    %-17s %8.2f  [%g - %g]  %s\n",
				sr.Parameter, s.Mean(sr.Parameter), sr.Low, sr.High, verdicts[sr.Parameter])
		}
	}
	return alert, nil
}
