package catalog_test

import (
	"reflect"
	"testing"

	"golang.org/x/text/language"

	"cdshelf/internal/catalog"
)

func TestFormatterRendersFullRecord(t *testing.T) {
	f := catalog.NewFormatter(language.BrazilianPortuguese, "R$", "★")
	got := f.Row(abbeyRoad())
	want := []string{"Abbey Road", "Beatles", "47 min", "Rock", "R$ 39,90", "★"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Row = %q, want %q", got, want)
	}
}

func TestFormatterPlaceholdersForAbsentValues(t *testing.T) {
	f := catalog.NewFormatter(language.BrazilianPortuguese, "R$", "")
	got := f.Row(catalog.Record{Title: "Bare"})
	want := []string{"Bare", "-", "-", "-", "-", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Row = %q, want %q", got, want)
	}
}

func TestFormatterShowsZeroValues(t *testing.T) {
	f := catalog.NewFormatter(language.BrazilianPortuguese, "R$", "★")
	rec := catalog.Record{Title: "Free", DurationMinutes: catalog.Int(0), Price: catalog.Float(0)}
	if got := f.Duration(rec); got != "0 min" {
		t.Fatalf("Duration = %q", got)
	}
	if got := f.Price(rec); got != "R$ 0,00" {
		t.Fatalf("Price = %q", got)
	}
}

func TestFormatterPriceWithoutCurrency(t *testing.T) {
	f := catalog.NewFormatter(language.English, "", "*")
	rec := catalog.Record{Title: "X", Price: catalog.Float(12.5), Favorite: true}
	if got := f.Price(rec); got != "12.50" {
		t.Fatalf("Price = %q", got)
	}
	if got := f.Favorite(rec); got != "*" {
		t.Fatalf("Favorite = %q", got)
	}
}

func TestHeadersMatchRowWidth(t *testing.T) {
	f := catalog.NewFormatter(language.BrazilianPortuguese, "R$", "★")
	if len(catalog.Headers) != len(f.Row(catalog.Record{Title: "x"})) {
		t.Fatal("headers and row cells differ in length")
	}
}
