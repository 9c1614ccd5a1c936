// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"strings"
)

// benchClassifier mirrors the keyword classifier the catalog seeder uses
// to fill blank category columns, isolated here so the matching cost can
// be measured on its own.
type benchClassifier struct {
	keywords map[string][]string
}

func newBenchClassifier() *benchClassifier {
	return &benchClassifier{
		keywords: map[string][]string{
			"science":    {"physics", "chemistry", "biology", "astronomy", "quantum"},
			"technology": {"programming", "software", "computer", "network", "database"},
			"history":    {"ancient", "war", "empire", "revolution", "medieval"},
			"biography":  {"life of", "memoir", "autobiography"},
			"children":   {"picture book", "fairy tale", "bedtime"},
			"business":   {"management", "economics", "marketing", "finance"},
			"arts":       {"painting", "sculpture", "music", "photography"},
		},
	}
}

// Classify returns the first category whose keywords match, or fiction
func (c *benchClassifier) Classify(title, description string) string {
	text := strings.ToLower(title + " " + description)

	for category, words := range c.keywords {
		for _, word := range words {
			if strings.Contains(text, word) {
				return category
			}
		}
	}
	return "fiction"
}

type catalogRow struct {
	Title       string
	Author      string
	Description string
}

// createCatalogRows generates realistic title and description pairs for
// classification and list benchmarks.
func createCatalogRows(n int) []catalogRow {
	seeds := []catalogRow{
		{"The Go Programming Language", "Alan A. A. Donovan", "A comprehensive guide to software development in Go"},
		{"A Brief History of Time", "Stephen Hawking", "From the big bang to black holes, astronomy for everyone"},
		{"The Very Hungry Caterpillar", "Eric Carle", "A classic picture book for early readers"},
		{"Zero to One", "Peter Thiel", "Notes on startups and building the economics of the future"},
		{"The Story of Art", "E. H. Gombrich", "A survey of painting and sculpture through the ages"},
		{"SPQR", "Mary Beard", "A history of the ancient Roman empire"},
		{"Long Walk to Freedom", "Nelson Mandela", "The autobiography of Nelson Mandela"},
		{"Dune", "Frank Herbert", "An epic tale of politics and prophecy on a desert planet"},
	}

	rows := make([]catalogRow, 0, n)
	for i := 0; i < n; i++ {
		seed := seeds[i%len(seeds)]
		rows = append(rows, catalogRow{
			Title:       fmt.Sprintf("%s (printing %d)", seed.Title, i+1),
			Author:      seed.Author,
			Description: seed.Description,
		})
	}
	return rows
}
