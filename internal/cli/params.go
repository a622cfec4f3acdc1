package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LineReader supplies prompted values.
type LineReader interface {
	ReadLine() (string, error)
}

// Params are the two values the listener needs.
type Params struct {
	Port    uint16
	HexMode bool
}

// Resolution is the outcome of ResolveParams.
type Resolution struct {
	Params
	// Corrected is set when the values were prompted for or replaced by defaults
	Corrected bool
}

// ResolveParams takes port and hex mode from exactly two positional
// arguments. Any other argument count prompts for both values on out/in.
// Unparseable values fall back to defaults with a usage message, and a hint
// with the equivalent command line is printed whenever something was
// corrected.
func ResolveParams(positional []string, defaults Params, in LineReader, out io.Writer) (Resolution, error) {
	var res Resolution
	var rawPort, rawHex string

	if len(positional) != 2 {
		fmt.Fprint(out, "Parameter format is wrong!\nPlease re-enter the values.\n\n")

		var err error
		if rawPort, err = prompt(in, out, "Port number [u16]: "); err != nil {
			return res, err
		}
		if rawHex, err = prompt(in, out, "Output TCP stream in hexadecimal? [t/f]: "); err != nil {
			return res, err
		}
		res.Corrected = true
	} else {
		rawPort = positional[0]
		rawHex = positional[1]
	}

	port, err := strconv.ParseUint(rawPort, 10, 16)
	if err != nil {
		printUsage(out)
		fmt.Fprintln(out, "Couldn't get the valid value from 'port number'")
		fmt.Fprintf(out, "Using default value: port %d\n", defaults.Port)
		port = uint64(defaults.Port)
		res.Corrected = true
	}
	res.Port = uint16(port)

	switch rawHex {
	case "t":
		res.HexMode = true
	case "f":
		res.HexMode = false
	default:
		printUsage(out)
		fmt.Fprintln(out, "Couldn't get the valid value from 'Output TCP stream in hexadecimal'")
		fmt.Fprintf(out, "Using default value: %t\n", defaults.HexMode)
		res.HexMode = defaults.HexMode
		res.Corrected = true
	}

	if res.Corrected {
		fmt.Fprintf(out, "\nYou can start the program with same values by:\n%s\n\n", res.CommandLine())
	}

	return res, nil
}

// CommandLine returns the invocation that reproduces these parameters.
func (p Params) CommandLine() string {
	hex := "f"
	if p.HexMode {
		hex = "t"
	}
	return fmt.Sprintf("./%s %d %s", ProgramName, p.Port, hex)
}

func prompt(in LineReader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read parameter: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, "Usage: ./%s [port number] [t/f :Output TCP stream in hexadecimal]\n", ProgramName)
}
