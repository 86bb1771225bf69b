package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
)

// recordFlags holds the form fields of add and update. Numeric fields are
// strings so an empty value can mean "absent".
type recordFlags struct {
	title    string
	author   string
	duration string
	genre    string
	price    string
	favorite bool
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Title (required)")
	cmd.Flags().StringVarP(&f.author, "author", "a", "", "Author or artist")
	cmd.Flags().StringVarP(&f.duration, "duration", "d", "", "Duration in whole minutes")
	cmd.Flags().StringVarP(&f.genre, "genre", "g", "", "Genre")
	cmd.Flags().StringVarP(&f.price, "price", "p", "", "Price, e.g. 39.90 or 39,90")
	cmd.Flags().BoolVarP(&f.favorite, "favorite", "f", false, "Mark as favorite")
}

// build returns the record described by the flags. With base set, only the
// flags given on the command line replace base's fields.
func (f *recordFlags) build(cmd *cobra.Command, base *catalog.Record) (catalog.Record, error) {
	var rec catalog.Record
	if base != nil {
		rec = base.Clone()
	}
	changed := func(name string) bool {
		return base == nil || cmd.Flags().Changed(name)
	}

	if changed("title") {
		rec.Title = f.title
	}
	if changed("author") {
		rec.Author = catalog.String(f.author)
	}
	if changed("genre") {
		rec.Genre = catalog.String(f.genre)
	}
	if changed("duration") {
		minutes, err := parseDuration(f.duration)
		if err != nil {
			return catalog.Record{}, err
		}
		rec.DurationMinutes = minutes
	}
	if changed("price") {
		price, err := parsePrice(f.price)
		if err != nil {
			return catalog.Record{}, err
		}
		rec.Price = price
	}
	if changed("favorite") {
		rec.Favorite = f.favorite
	}
	return rec, nil
}

func parseDuration(value string) (*int, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "min"))
	if value == "" {
		return nil, nil
	}
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return nil, &catalog.ValidationError{Field: "duration", Reason: fmt.Sprintf("must be whole minutes, got %q", value)}
	}
	return catalog.Int(minutes), nil
}

func parsePrice(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	normalized := strings.ReplaceAll(value, ",", ".")
	price, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil, &catalog.ValidationError{Field: "price", Reason: fmt.Sprintf("must be a number, got %q", value)}
	}
	return catalog.Float(price), nil
}
