// ABOUTME: Request-line parser for the minimal GET dialect the device understands
// ABOUTME: Extracts a lower-cased route name and verbatim path arguments; headers are never read

package request

import (
	"bytes"
	stderrors "errors"
	"strings"
)

const (
	// Prefix is the only method token accepted, including the leading slash.
	Prefix = "GET /"

	// ProtocolMarker ends the path. Everything from it onward is ignored.
	ProtocolMarker = "HTTP/1.1"
)

var (
	ErrTooShort          = stderrors.New("request shorter than request-line prefix")
	ErrUnsupportedMethod = stderrors.New("only GET requests are understood")
	ErrMissingProtocol   = stderrors.New("protocol marker " + ProtocolMarker + " not found")
)

type Request struct {
	// Route is the first path segment, lower-cased.
	Route string
	// Args are the remaining segments in order. Never nil.
	Args []string
	// Path is the raw text between the prefix and the protocol marker.
	Path string
}

// Parse reads the request line out of raw, which is assumed to be the
// complete result of a single read from the connection.
func Parse(raw []byte) (*Request, error) {
	if len(raw) <= len(Prefix) {
		return nil, ErrTooShort
	}
	if !bytes.HasPrefix(raw, []byte(Prefix)) {
		return nil, ErrUnsupportedMethod
	}

	rest := string(raw[len(Prefix):])
	idx := strings.Index(rest, ProtocolMarker)
	if idx < 0 {
		return nil, ErrMissingProtocol
	}
	path := strings.TrimSuffix(rest[:idx], " ")

	parts := strings.Split(path, "/")
	args := make([]string, 0, len(parts)-1)
	args = append(args, parts[1:]...)

	return &Request{
		Route: strings.ToLower(parts[0]),
		Args:  args,
		Path:  path,
	}, nil
}
