// Package identity parses the recording filename convention that ties an
// audio clip to its broadcast time and transmitting unit.
package identity
