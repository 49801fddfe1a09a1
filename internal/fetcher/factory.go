package fetcher

import (
	"fmt"
	"io"
)

// Names lists the transports NewTransport knows about
var Names = []string{NameColly, NameHTTP, NameHeadless}

// ValidName reports whether name is a known transport
func ValidName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// NewTransport builds the transport called name. An empty name returns a nil
// transport, which New skips.
func NewTransport(name string, cfg Config) (Transport, error) {
	switch name {
	case "":
		return nil, nil
	case NameHTTP:
		return NewHTTPTransport(cfg), nil
	case NameColly:
		return NewCollyTransport(cfg), nil
	case NameHeadless:
		return NewHeadlessTransport(cfg), nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", name)
	}
}

// Close releases resources held by the fetcher's transports
func (f *Fetcher) Close() error {
	for _, t := range f.transports {
		switch c := t.(type) {
		case interface{ Close() }:
			c.Close()
		case io.Closer:
			if err := c.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
