package models

import "strings"

// Instrument is a catalog entry the user can forecast.
type Instrument struct {
	Key  string // opaque catalog key sent to the prediction service, e.g. "ADANI_PORTS.csv"
	Name string // display name derived from Key
}

// NewInstrument builds an Instrument whose Name is derived from key.
func NewInstrument(key string) Instrument {
	return Instrument{Key: key, Name: DisplayName(key)}
}

// DisplayName strips a trailing ".csv" extension (any case) and turns underscores into spaces.
func DisplayName(key string) string {
	name := key
	if n := len(name); n >= 4 && strings.EqualFold(name[n-4:], ".csv") {
		name = name[:n-4]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// DateRange holds the two boundary dates as entered. Either may be empty.
type DateRange struct {
	Start string `validate:"required"`
	End   string `validate:"required"`
}
