package model

import (
	"encoding/json"
	"sort"
)

// Languages maps a language name to the number of bytes written in it.
type Languages map[string]int

// UnmarshalJSON rejects non-integer byte counts with the language as path.
func (l *Languages) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	langs := make(Languages, len(obj))
	for name, raw := range obj {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return fieldError(name, err)
		}
		langs[name] = n
	}
	*l = langs
	return nil
}

// Total returns the byte count across all languages.
func (l Languages) Total() int {
	total := 0
	for _, n := range l {
		total += n
	}
	return total
}

// Names returns the languages ordered by byte count, largest first; ties are
// broken by name.
func (l Languages) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if l[names[i]] != l[names[j]] {
			return l[names[i]] > l[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
