package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Plain copies of the record types without their JSON methods.
type (
	donationJSON Donation
	visitJSON    Visit
)

var (
	donationKeys = jsonKeys(reflect.TypeOf(Donation{}))
	visitKeys    = jsonKeys(reflect.TypeOf(Visit{}))
)

// UnmarshalJSON decodes the modelled fields and keeps every other member in Extra.
func (d *Donation) UnmarshalJSON(data []byte) error {
	var plain donationJSON
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := unknownMembers(data, donationKeys)
	if err != nil {
		return err
	}
	*d = Donation(plain)
	d.Extra = extra
	return nil
}

// MarshalJSON encodes the modelled fields followed by Extra.
func (d Donation) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(donationJSON(d), d.Extra, donationKeys)
}

// UnmarshalJSON decodes the modelled fields and keeps every other member in Extra.
func (v *Visit) UnmarshalJSON(data []byte) error {
	var plain visitJSON
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := unknownMembers(data, visitKeys)
	if err != nil {
		return err
	}
	*v = Visit(plain)
	v.Extra = extra
	return nil
}

// MarshalJSON encodes the modelled fields followed by Extra.
func (v Visit) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(visitJSON(v), v.Extra, visitKeys)
}

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

func unknownMembers(data []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for k, raw := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = append(json.RawMessage(nil), raw...)
	}
	return extra, nil
}

// marshalWithExtra appends the extra members, in key order, after the
// modelled fields. Keys that collide with a modelled field are skipped.
func marshalWithExtra(plain any, extra map[string]json.RawMessage, known map[string]bool) ([]byte, error) {
	body, err := json.Marshal(plain)
	if err != nil || len(extra) == 0 {
		return body, err
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(body, []byte("}")))
	empty := bytes.Equal(body, []byte("{}"))
	for _, k := range keys {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
