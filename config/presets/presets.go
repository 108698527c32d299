// Package presets holds named configurations that replace the defaults.
package presets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spacemeshos/go-statekeeper/config"
)

var presets = map[string]config.Config{}

func register(name string, conf config.Config) {
	if _, exist := presets[name]; exist {
		panic(fmt.Sprintf("preset %s already registered", name))
	}
	presets[name] = conf
}

// Options returns the names of registered presets.
func Options() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the preset with the name.
func Get(name string) (config.Config, error) {
	conf, exist := presets[name]
	if !exist {
		return config.Config{}, fmt.Errorf("preset %s is not registered. select one of: %s",
			name, strings.Join(Options(), ", "))
	}
	return conf, nil
}
