package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexID accepts an id sent either as a JSON number or as a string. Null,
// missing and blank values decode to an absent id.
type FlexID struct {
	Value int64
	Valid bool
}

func NewFlexID(v int64) FlexID {
	return FlexID{Value: v, Valid: true}
}

func (f FlexID) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexID{}
		return nil
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	id, err := NormalizeID(raw)
	if err != nil {
		return err
	}
	if id == nil {
		*f = FlexID{}
		return nil
	}
	*f = NewFlexID(*id)
	return nil
}

// NormalizeID turns the loosely typed ids found in client payloads into a
// single optional int64.
func NormalizeID(v any) (*int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		id := int64(t)
		return &id, nil
	case int32:
		id := int64(t)
		return &id, nil
	case int64:
		return &t, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptionID, t)
		}
		id := int64(t)
		return &id, nil
	case json.Number:
		return NormalizeID(t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOptionID, t)
		}
		return &id, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidOptionID, v)
	}
}
