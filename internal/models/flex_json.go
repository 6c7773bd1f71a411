package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// userFieldMap caches JSON tag -> struct field index mappings
var (
	userFieldMap     map[string]int
	userFieldMapOnce sync.Once
)

func getUserFieldMap() map[string]int {
	userFieldMapOnce.Do(func() {
		t := reflect.TypeOf(User{})
		userFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			userFieldMap[name] = i
		}
	})
	return userFieldMap
}

// UnmarshalJSON accepts user records whose fields arrive as JSON numbers
// where the model expects strings (the demo API sends numeric ids). Null
// and unsupported values leave the field empty so the loader can fill in
// a fallback.
func (u *User) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias User
	a := (*Alias)(u)

	// Fast path: every field already matches
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	// Slow path: field-by-field with native-to-string coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getUserFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		coerceToString(fv, rawVal)
	}

	return nil
}

// coerceToString stores numbers and booleans in their canonical text form.
func coerceToString(fv reflect.Value, rawVal json.RawMessage) {
	if fv.Kind() != reflect.String {
		return
	}
	var n json.Number
	if err := json.Unmarshal(rawVal, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			fv.SetString(strconv.FormatInt(i, 10))
			return
		}
		fv.SetString(n.String())
		return
	}
	var b bool
	if err := json.Unmarshal(rawVal, &b); err == nil {
		fv.SetString(strconv.FormatBool(b))
	}
}
