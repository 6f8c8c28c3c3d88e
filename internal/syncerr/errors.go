package syncerr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind is the closed set of failure classes a sync run can end with.
type Kind int

const (
	KindInternal Kind = iota
	KindTransport
	KindTimeout
	KindFormat
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindFormat:
		return "format"
	case KindConfig:
		return "config"
	default:
		return "internal"
	}
}

// TransportError is a non-2xx response or a failed connection.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s %s: API returned status %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s %s: API returned status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError means the feed archive or spreadsheet could not be understood.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %s: %v", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Formatf builds a FormatError for source.
func Formatf(source, format string, args ...any) error {
	return &FormatError{Source: source, Err: fmt.Errorf(format, args...)}
}

// Classify maps err onto a Kind. Timeouts win over the transport class they
// are carried in.
func Classify(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if isTimeout(err) {
		return KindTimeout
	}

	var te *TransportError
	if errors.As(err, &te) {
		return KindTransport
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		return KindFormat
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return KindConfig
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindTransport
	}
	return KindInternal
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
