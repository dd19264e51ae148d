// Package logging configures the process-wide apex/log logger from
// LOG_FORMAT and LOG_LEVEL.
package logging

import (
	"io"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup installs the handler for format ("json", anything else is text)
// writing to w, and sets the level. An unknown level falls back to info
// and is returned as an error for the caller to report.
func Setup(w io.Writer, format, level string) error {
	if format == "json" {
		log.SetHandler(jsonhandler.New(w))
	} else {
		log.SetHandler(text.New(w))
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return err
	}
	log.SetLevel(lvl)
	return nil
}
