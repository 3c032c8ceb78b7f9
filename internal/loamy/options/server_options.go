package options

import (
	"fmt"
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// ServerOptions contains the options for the HTTP server.
type ServerOptions struct {
	BindAddress     string `json:"bind-address" mapstructure:"bind-address"`
	BindPort        int    `json:"bind-port"    mapstructure:"bind-port"`
	Mode            string `json:"mode"         mapstructure:"mode"`
	StaticDir       string `json:"static-dir"   mapstructure:"static-dir"`
	EnableProfiling bool   `json:"profiling"    mapstructure:"profiling"`
	EnableMetrics   bool   `json:"metrics"      mapstructure:"metrics"`
}

// NewServerOptions creates ServerOptions with defaults.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		BindAddress:   "0.0.0.0",
		BindPort:      8080,
		Mode:          gin.ReleaseMode,
		StaticDir:     "static",
		EnableMetrics: true,
	}
}

// Address returns host:port.
func (o *ServerOptions) Address() string {
	return net.JoinHostPort(o.BindAddress, strconv.Itoa(o.BindPort))
}

func (o *ServerOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("--server.bind-port %d must be between 1 and 65535", o.BindPort))
	}
	switch o.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("--server.mode %q must be one of debug, release, test", o.Mode))
	}
	if o.StaticDir == "" {
		errs = append(errs, fmt.Errorf("--server.static-dir must not be empty"))
	}
	return errs
}

func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "server.bind-address", o.BindAddress, "The IP address on which to serve the HTTP API.")
	fs.IntVar(&o.BindPort, "server.bind-port", o.BindPort, "The port on which to serve the HTTP API.")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin mode: debug, release or test.")
	fs.StringVar(&o.StaticDir, "server.static-dir", o.StaticDir, "Directory generated documents are written to and served from under /static.")
	fs.BoolVar(&o.EnableProfiling, "server.profiling", o.EnableProfiling, "Enable profiling via web interface host:port/debug/pprof/.")
	fs.BoolVar(&o.EnableMetrics, "server.metrics", o.EnableMetrics, "Expose prometheus metrics on /metrics.")
}
