package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is rendered for absent optional values.
const Placeholder = "-"

// Formatter renders record fields for tables. Absent values render as
// Placeholder; zero values are real values and render as such.
type Formatter struct {
	printer  *message.Printer
	currency string
	favorite string
}

// NewFormatter returns a formatter for the given locale.
func NewFormatter(tag language.Tag, currencySymbol, favoriteMarker string) *Formatter {
	if favoriteMarker == "" {
		favoriteMarker = "★"
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: strings.TrimSpace(currencySymbol),
		favorite: favoriteMarker,
	}
}

// Author returns the author or the placeholder when absent.
func (f *Formatter) Author(r Record) string { return orPlaceholder(r.Author) }

// Genre returns the genre or the placeholder when absent.
func (f *Formatter) Genre(r Record) string { return orPlaceholder(r.Genre) }

// Duration renders minutes as "47 min"; zero is shown, absence is the placeholder.
func (f *Formatter) Duration(r Record) string {
	if r.DurationMinutes == nil {
		return Placeholder
	}
	return strconv.Itoa(*r.DurationMinutes) + " min"
}

// Price renders the price in the configured locale with two decimals.
func (f *Formatter) Price(r Record) string {
	if r.Price == nil {
		return Placeholder
	}
	amount := f.printer.Sprint(number.Decimal(*r.Price, number.Scale(2)))
	if f.currency == "" {
		return amount
	}
	return f.currency + " " + amount
}

// Favorite returns the favorite marker, or the placeholder for non-favorites.
func (f *Formatter) Favorite(r Record) string {
	if r.Favorite {
		return f.favorite
	}
	return Placeholder
}

// Row returns the display cells in column order: title, author, duration,
// genre, price, favorite.
func (f *Formatter) Row(r Record) []string {
	return []string{r.Title, f.Author(r), f.Duration(r), f.Genre(r), f.Price(r), f.Favorite(r)}
}

// Headers are the column titles matching Row.
var Headers = []string{"Título", "Autor", "Duração", "Gênero", "Preço", "Favorito"}

func orPlaceholder(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Placeholder
	}
	return *s
}
