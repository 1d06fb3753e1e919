// Package io defines the basic interfaces for working with an 8080
// IN/OUT port. Unlike a memory-mapped port these are addressed by an
// 8 bit port number carried in the instruction's immediate byte, not
// by a bus address, so the hooks take the port number directly.
package io

// InputPort defines a readable 8080 input port.
type InputPort interface {
	// Input returns the current value on the given port.
	Input(port uint8) uint8
}

// OutputPort defines a writable 8080 output port.
type OutputPort interface {
	// Output latches val onto the given port.
	Output(port uint8, val uint8)
}

// InputFunc adapts a plain function to InputPort.
type InputFunc func(port uint8) uint8

// Input implements InputPort.
func (f InputFunc) Input(port uint8) uint8 { return f(port) }

// OutputFunc adapts a plain function to OutputPort.
type OutputFunc func(port uint8, val uint8)

// Output implements OutputPort.
func (f OutputFunc) Output(port uint8, val uint8) { f(port, val) }
