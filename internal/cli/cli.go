// Package cli parses the command line and resolves the startup parameters
// (port and hex mode), prompting the operator when they are missing.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ProgramName is used in usage and hint messages
const ProgramName = "tcpresponder"

// Options represent flags given on the command line. Zero values mean the
// config file value is kept.
type Options struct {
	ConfigPath string
	Host       string
	BufferSize int
	Verbose    bool

	// Positional holds the remaining arguments: <port> <t|f>
	Positional []string
}

// ParseArgs parses args (without the program name). flag.ErrHelp is
// returned after usage has been printed for -help.
func ParseArgs(args []string, output io.Writer) (*Options, error) {
	fs := flag.NewFlagSet(ProgramName, flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &Options{}
	var showHelp bool

	fs.StringVar(&opts.ConfigPath, "config", "", "Path of the JSON config file")
	fs.StringVar(&opts.Host, "host", "", "Address to bind the listener to (default from config: localhost)")
	fs.IntVar(&opts.BufferSize, "buffer", 0, "Read buffer size in bytes; payloads above 65535 bytes end the session")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log at debug level")
	fs.BoolVar(&showHelp, "help", false, "Show usage information")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options] [port number] [t/f :Output TCP stream in hexadecimal]\n\n", ProgramName)
		fmt.Fprintln(fs.Output(), "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		return nil, err
	}

	if showHelp {
		fs.Usage()
		return nil, flag.ErrHelp
	}

	if opts.BufferSize < 0 {
		return nil, fmt.Errorf("buffer size must not be negative")
	}

	opts.Host = strings.TrimSpace(opts.Host)
	opts.Positional = append([]string(nil), fs.Args()...)
	return opts, nil
}
