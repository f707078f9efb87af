package jsonapi

import (
	"sync"

	gojson "github.com/goccy/go-json"
)

// MarshalFunc is the signature of the byte-level JSON writer.
type MarshalFunc = func(v any) ([]byte, error)

// UnmarshalFunc is the signature of the byte-level JSON reader.
type UnmarshalFunc = func(data []byte, v any) error

// JSONDriver supplies the byte-level JSON reader/writer used by the wire
// types. The default implementation is based on goccy/go-json and may be
// swapped with SetJSONDriver.
type JSONDriver interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

type gojsonDriver struct{}

func (gojsonDriver) Marshal(v any) ([]byte, error)   { return gojson.Marshal(v) }
func (gojsonDriver) Unmarshal(b []byte, v any) error { return gojson.Unmarshal(b, v) }
func (gojsonDriver) Name() string                    { return "goccy/go-json" }

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = gojsonDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the active driver.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	defer jsonDriverMu.RUnlock()
	return currentJSONDriver
}

// Marshal encodes v through the active JSON driver.
func Marshal(v any) ([]byte, error) { return CurrentJSONDriver().Marshal(v) }

// Unmarshal decodes data through the active JSON driver.
func Unmarshal(data []byte, v any) error { return CurrentJSONDriver().Unmarshal(data, v) }
