// Package customfield models user-defined person attributes as a closed set of
// kinds, each with its own value type.
package customfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"
)

type Kind string

const (
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindDate    Kind = "date"
	KindBoolean Kind = "boolean"
	KindSelect  Kind = "select"
	KindURL     Kind = "url"
)

const dateLayout = "2006-01-02"

var ErrUnknownKind = errors.New("unknown custom field kind")

// Value is implemented only by the types in this package.
type Value interface {
	Kind() Kind
	isValue()
}

type Text string
type Number float64
type Date time.Time
type Boolean bool
type URL struct{ *url.URL }

type Select struct {
	Choice  string   `json:"choice"`
	Options []string `json:"options"`
}

func (Text) Kind() Kind    { return KindText }
func (Number) Kind() Kind  { return KindNumber }
func (Date) Kind() Kind    { return KindDate }
func (Boolean) Kind() Kind { return KindBoolean }
func (Select) Kind() Kind  { return KindSelect }
func (URL) Kind() Kind     { return KindURL }

func (Text) isValue()    {}
func (Number) isValue()  {}
func (Date) isValue()    {}
func (Boolean) isValue() {}
func (Select) isValue()  {}
func (URL) isValue()     {}

type Field struct {
	Name  string
	Value Value
}

type wireField struct {
	Name  string          `json:"name"`
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	var raw any
	switch v := f.Value.(type) {
	case Text:
		raw = string(v)
	case Number:
		raw = float64(v)
	case Date:
		raw = time.Time(v).Format(dateLayout)
	case Boolean:
		raw = bool(v)
	case Select:
		raw = v
	case URL:
		raw = v.String()
	default:
		return nil, fmt.Errorf("field %q: %w", f.Name, ErrUnknownKind)
	}
	value, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireField{Name: f.Name, Kind: f.Value.Kind(), Value: value})
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var w wireField
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := Decode(w.Kind, w.Value)
	if err != nil {
		return fmt.Errorf("field %q: %w", w.Name, err)
	}
	f.Name = w.Name
	f.Value = v
	return nil
}

// Decode parses raw according to kind.
func Decode(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return Text(s), nil
	case KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return Number(n), nil
	case KindDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, err
		}
		return Date(t), nil
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return Boolean(b), nil
	case KindSelect:
		var s Select
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s.Choice != "" && !slices.Contains(s.Options, s.Choice) {
			return nil, fmt.Errorf("choice %q is not one of the options", s.Choice)
		}
		return s, nil
	case KindURL:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("url %q must be absolute", s)
		}
		return URL{u}, nil
	}
	return nil, ErrUnknownKind
}

// Format renders v for display.
func Format(v Value) string {
	switch v := v.(type) {
	case Text:
		return string(v)
	case Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Date:
		return time.Time(v).Format("Jan 2, 2006")
	case Boolean:
		if v {
			return "Yes"
		}
		return "No"
	case Select:
		return v.Choice
	case URL:
		return v.String()
	}
	return ""
}
