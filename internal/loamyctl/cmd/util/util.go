// Package util holds the helpers shared by loamyctl commands.
package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// IOStreams provides the standard names for iostreams.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// ClientOptions are the persistent flags every command shares.
type ClientOptions struct {
	Server string
}

// NormalizeServer makes sure the server address carries a scheme.
func NormalizeServer(addr string) string {
	addr = strings.TrimRight(addr, "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return addr
}

var fatalErrHandler = fatal

func fatal(msg string, code int) {
	if len(msg) > 0 {
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(os.Stderr, color.RedString(msg))
	}
	os.Exit(code)
}

// CheckErr prints a user friendly error and exits with a non-zero code.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fatalErrHandler("error: "+err.Error(), 1)
}
