package main

import (
	"flag"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

// applyConfigFile sets flags from a TOML file whose keys are flag names.
// Flags given on the command line win over the file.
//
//	impl = "spin,lockfree"
//	producers = 10
//	backoff = "50us"
func applyConfigFile(fs *flag.FlagSet, path string) error {
	var values map[string]any
	if _, err := toml.DecodeFile(path, &values); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if name == "config" || fs.Lookup(name) == nil {
			return fmt.Errorf("config %s: unknown key %q", path, name)
		}
		if explicit[name] {
			continue
		}
		if err := fs.Set(name, fmt.Sprint(values[name])); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}
