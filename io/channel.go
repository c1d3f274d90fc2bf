// Package io provides the output channels of the octet machine.
// The OUT instruction sends register values to a Channel; observers
// read them back at any time.
package io

import (
	"iter"
)

// Channel defines the interface for the machine output stream.
type Channel interface {
	// Rewind discards everything sent so far.
	Rewind()
	// Receive returns an iterator over the values sent since the last Rewind.
	Receive() iter.Seq[uint8]
	// Send appends a single value to the channel.
	Send(value uint8) error
}
