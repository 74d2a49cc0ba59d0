package pecron

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Device is the identity record for one power station on the account.
// The device list is discovered once per session and assumed stable until
// the session is reset.
type Device struct {
	DeviceKey       string `json:"deviceKey"`
	DeviceName      string `json:"deviceName"`
	ProductKey      string `json:"productKey"`
	ProductName     string `json:"productName"`
	FirmwareVersion string `json:"firmwareVersion"`
	Online          bool   `json:"online"`
}

// ValueKind discriminates the scalar kinds a property can hold
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindBool
)

// Value is one scalar property reading (numeric or boolean)
type Value struct {
	kind    ValueKind
	number  float64
	boolean bool
}

// NumberValue creates a numeric property value
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, number: n}
}

// BoolValue creates a boolean property value
func BoolValue(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Kind returns the scalar kind of the value
func (v Value) Kind() ValueKind {
	return v.kind
}

// Number returns the value as a float64 (booleans map to 0/1)
func (v Value) Number() float64 {
	if v.kind == KindBool {
		if v.boolean {
			return 1
		}
		return 0
	}
	return v.number
}

// Bool returns the value as a bool (numbers are true when non-zero)
func (v Value) Bool() bool {
	if v.kind == KindNumber {
		return v.number != 0
	}
	return v.boolean
}

// PropertySet is the open, string-keyed bag of scalar values the cloud
// returns for one device at one point in time. The schema is not fixed:
// lookups return an explicit not-present marker instead of a zero value.
type PropertySet struct {
	values map[string]Value
}

// NewPropertySet creates a property set from already-typed values
func NewPropertySet(values map[string]Value) PropertySet {
	return PropertySet{values: values}
}

// Lookup returns the value for key and whether the device reported it at all
func (ps PropertySet) Lookup(key string) (Value, bool) {
	v, ok := ps.values[key]
	return v, ok
}

// Number returns the numeric value for key, or false when absent
func (ps PropertySet) Number(key string) (float64, bool) {
	v, ok := ps.values[key]
	if !ok {
		return 0, false
	}
	return v.Number(), true
}

// Bool returns the boolean value for key, or false when absent
func (ps PropertySet) Bool(key string) (bool, bool) {
	v, ok := ps.values[key]
	if !ok {
		return false, false
	}
	return v.Bool(), true
}

// Len returns the number of reported properties
func (ps PropertySet) Len() int {
	return len(ps.values)
}

// Keys returns the reported property codes (unordered)
func (ps PropertySet) Keys() []string {
	keys := make([]string, 0, len(ps.values))
	for k := range ps.values {
		keys = append(keys, k)
	}
	return keys
}

// decodeProperties converts the raw JSON property object into a PropertySet.
// The cloud reports some codes with an "_hm" suffix; those are normalized to
// the plain code so downstream lookups see one name.
func decodeProperties(raw map[string]json.RawMessage) (PropertySet, error) {
	values := make(map[string]Value, len(raw))
	for code, data := range raw {
		key := strings.TrimSuffix(code, "_hm")

		var b bool
		if err := json.Unmarshal(data, &b); err == nil {
			values[key] = BoolValue(b)
			continue
		}

		var n float64
		if err := json.Unmarshal(data, &n); err == nil {
			values[key] = NumberValue(n)
			continue
		}

		// Non-scalar payloads (strings, nested objects) are dropped; the
		// bridge only surfaces numeric and boolean measurements.
	}
	return PropertySet{values: values}, nil
}

// TSLProperty is one entry of a product's thing-spec (TSL): the list of
// property codes a given product actually supports
type TSLProperty struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ActionResult is the vendor's answer to a control request
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// APIError is a vendor-level failure carrying the cloud's numeric code
// (5032 is their token-invalid code)
type APIError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the vendor code for failure classification
func (e *APIError) ErrorCode() int {
	return e.Code
}
