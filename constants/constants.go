package constants

import "time"

const (
	// viper keys shared between the CLI and the logger
	ConfigFolder = "CONFIG_FOLDER"
	LogFolder    = "LOG_FOLDER"

	// MaxAppendBytes is the serialized-row threshold after which buffered rows
	// are flushed to the write stream. The Storage Write API rejects requests
	// above 10MB, so stay safely below it.
	MaxAppendBytes = 9_000_000

	// Output layouts of the TIME and DATETIME converters.
	TimeFormat     = "15:04:05.000000"
	DateTimeFormat = "2006-01-02 15:04:05.000"
)

// Epoch is the reference day for DATE values (stored as day offsets).
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
