package ui

import "time"

// tickMsg triggers a meter refresh
type tickMsg time.Time

// DoneMsg indicates the stream has ended, with the error that stopped it
// if any
type DoneMsg struct {
	Err error
}
