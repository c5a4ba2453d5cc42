// Package setflag is a flag.Value for comma-separated values drawn from a
// fixed set of options.
package setflag

import (
	"fmt"
	"slices"
	"strings"
)

func New(options ...string) *SetFlag {
	return &SetFlag{options: options}
}

// SetFlag keeps values in the order they were first given. Until Set is
// called, List returns the defaults.
type SetFlag struct {
	options  []string
	defaults []string
	values   []string
	set      bool
}

// Default sets the values used when the flag isn't given.
func (sf *SetFlag) Default(values ...string) *SetFlag {
	sf.defaults = values
	return sf
}

func (sf *SetFlag) List() []string {
	if !sf.set {
		return slices.Clone(sf.defaults)
	}
	return slices.Clone(sf.values)
}

func (sf *SetFlag) String() string {
	if sf == nil {
		return ""
	}
	return strings.Join(sf.List(), ",")
}

func (sf *SetFlag) Set(value string) error {
	if !sf.set {
		sf.values, sf.set = nil, true
	}
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !slices.Contains(sf.options, v) {
			return fmt.Errorf("unsupported value '%s' (options: %s)", v, strings.Join(sf.options, ", "))
		}
		if !slices.Contains(sf.values, v) {
			sf.values = append(sf.values, v)
		}
	}
	return nil
}
