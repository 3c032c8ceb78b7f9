package options

import (
	"github.com/kiosk404/loamy/pkg/utils/cliflag"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

// Options is the full configuration of the loamy server.
type Options struct {
	ServerOptions *ServerOptions `json:"server" mapstructure:"server"`
	LogOptions    *LogOptions    `json:"log"    mapstructure:"log"`
	ModelOptions  *ModelOptions  `json:"models" mapstructure:"models"`
	AgentOptions  *AgentOptions  `json:"agent"  mapstructure:"agent"`
	StoreOptions  *StoreOptions  `json:"store"  mapstructure:"store"`
}

func NewOptions() *Options {
	return &Options{
		ServerOptions: NewServerOptions(),
		LogOptions:    NewLogOptions(),
		ModelOptions:  NewModelOptions(),
		AgentOptions:  NewAgentOptions(),
		StoreOptions:  NewStoreOptions(),
	}
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.ServerOptions.AddFlags(fss.FlagSet("server"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.ModelOptions.AddFlags(fss.FlagSet("models"))
	o.AgentOptions.AddFlags(fss.FlagSet("agent"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	return fss
}

func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.ServerOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.ModelOptions.Validate()...)
	errs = append(errs, o.AgentOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
