// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package translate localizes the diagnostics printed by the assembler,
// the processor and the command line tools.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("mipsim: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage overrides the locale detected from the environment.
func SetLanguage(name string) (err error) {
	tag, err := language.Parse(name)
	if err != nil {
		return
	}

	printer = message.NewPrinter(tag)
	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Number formats an integer with the locale's digit grouping.
func Number(value int64) string {
	return printer.Sprint(value)
}
