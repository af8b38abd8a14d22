package services

import (
	"fmt"
	"io"
	"sort"

	"issuu-scraper/models"
)

type AuthorCount struct {
	Author string
	Count  int
}

type Report struct {
	Query            string
	TotalListings    int
	MatchingCount    int
	NonMatchingCount int
	PricedCount      int
	PagesScraped     int
	Truncated        bool
	TopAuthors       []AuthorCount
	Matching         []models.Listing
	NonMatching      []models.Listing
}

// GenerateReport summarises one scrape for the terminal.
func GenerateReport(result models.ScrapeResult) Report {
	report := Report{
		Query:            result.Query,
		TotalListings:    len(result.Matching) + len(result.NonMatching),
		MatchingCount:    len(result.Matching),
		NonMatchingCount: len(result.NonMatching),
		PagesScraped:     result.PagesScraped,
		Truncated:        result.Truncated,
		Matching:         result.Matching,
		NonMatching:      result.NonMatching,
	}

	byAuthor := make(map[string]int)
	for _, l := range result.All() {
		if l.HasPrice() {
			report.PricedCount++
		}
		byAuthor[normalizeAuthor(l.AuthorName)]++
	}

	report.TopAuthors = topAuthors(byAuthor, 5)
	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintf(w, "│ %-60s │\n", truncateText("Issuu results for "+report.Query, 60))
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Total Publications", report.TotalListings)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Matching", report.MatchingCount)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Non-Matching", report.NonMatchingCount)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "With Price", report.PricedCount)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Pages Scraped", report.PagesScraped)
	fmt.Fprintf(w, "│ %-29s │ %-28t │\n", "Stopped Early", report.Truncated)
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	printListings(w, "Matching Results (Author Similar to Company Name)", report.Matching)
	printListings(w, "Non-Matching Results", report.NonMatching)

	if len(report.TopAuthors) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Fprintln(w, "│ Publications per Author                      │ Count         │")
	fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
	for _, a := range report.TopAuthors {
		fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(a.Author, 44), a.Count)
	}
	fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")
}

func printListings(w io.Writer, title string, listings []models.Listing) {
	fmt.Fprintln(w)
	if len(listings) == 0 {
		fmt.Fprintf(w, "%s: none found.\n", title)
		return
	}

	fmt.Fprintln(w, title)
	fmt.Fprintln(w, "┌─────┬────────────────────────────────────────┬──────────────────────────────┬────────────┐")
	fmt.Fprintln(w, "│ #   │ Title                                  │ Author Link                  │ Price      │")
	fmt.Fprintln(w, "├─────┼────────────────────────────────────────┼──────────────────────────────┼────────────┤")
	for i, l := range listings {
		price := l.Price
		if !l.HasPrice() {
			price = "-"
		}
		fmt.Fprintf(w, "│ %-3d │ %-38s │ %-28s │ %-10s │\n",
			i+1, truncateText(l.Title, 38), truncateText(l.AuthorLink, 28), truncateText(price, 10))
	}
	fmt.Fprintln(w, "└─────┴────────────────────────────────────────┴──────────────────────────────┴────────────┘")
}

func topAuthors(m map[string]int, n int) []AuthorCount {
	counts := make([]AuthorCount, 0, len(m))
	for author, count := range m {
		counts = append(counts, AuthorCount{Author: author, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].Author < counts[j].Author
		}
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

func normalizeAuthor(author string) string {
	if author == "" {
		return "Unknown"
	}
	return author
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
