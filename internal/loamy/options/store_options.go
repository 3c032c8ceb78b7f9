package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// StoreOptions selects the customer store.
type StoreOptions struct {
	Type string `json:"type" mapstructure:"type"`
	Path string `json:"path" mapstructure:"path"`
	Seed bool   `json:"seed" mapstructure:"seed"`
}

func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Type: "sqlite",
		Path: "data/loamy.db",
		Seed: true,
	}
}

func (o *StoreOptions) Validate() []error {
	switch o.Type {
	case "sqlite", "boltdb", "inmemory":
		return nil
	default:
		return []error{fmt.Errorf("--store.type %q must be sqlite, boltdb or inmemory", o.Type)}
	}
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Type, "store.type", o.Type, "Customer store: sqlite, boltdb or inmemory.")
	fs.StringVar(&o.Path, "store.path", o.Path, "Database file for the sqlite and boltdb stores.")
	fs.BoolVar(&o.Seed, "store.seed", o.Seed, "Load the demo customers at startup.")
}
