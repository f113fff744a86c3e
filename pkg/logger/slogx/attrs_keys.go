package slogx

// Keys for log attributes.
const (
	ErrorKey = "error"
)
