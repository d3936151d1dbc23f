package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli"

	"github.com/lumera-tools/protolite/wire"
)

var (
	typeFlag = cli.StringFlag{
		Name:  "type",
		Usage: "Message type, fully qualified or a unique short name",
	}
	inFlag = cli.StringFlag{
		Name:  "in",
		Usage: "Input `[path]`, standard input when omitted",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Output `[path]`, standard output when omitted",
	}
	hexFlag = cli.BoolFlag{
		Name:  "hex",
		Usage: "Write the encoded bytes as hex",
	}
	hexInputFlag = cli.StringFlag{
		Name:  "hex-input",
		Usage: "Read the wire bytes from this hex string instead of a file",
	}
	formatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "Output format: json or yaml",
		Value: "json",
	}
)

var errMissingType = errors.New("missing --type")

func encodeCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "encode",
		Usage: "Encode a JSON object into wire bytes",
		Flags: []cli.Flag{typeFlag, inFlag, outFlag, hexFlag},
		Action: func(c *cli.Context) error {
			messageType := c.String(typeFlag.Name)
			if messageType == "" {
				return errMissingType
			}
			input, err := e.readInput(c)
			if err != nil {
				return err
			}

			data, err := e.proto.JSONToWire(input, messageType)
			if err != nil {
				return fmt.Errorf("encode %s: %w", messageType, err)
			}
			e.log.Debug().Str("type", messageType).Int("bytes", len(data)).Msg("encoded")

			if c.Bool(hexFlag.Name) {
				data = []byte(hex.EncodeToString(data) + "\n")
			}
			return writeOutput(c, data)
		},
	}
}

func decodeCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "decode",
		Usage: "Decode wire bytes and print them as JSON or YAML",
		Flags: []cli.Flag{typeFlag, inFlag, hexInputFlag, outFlag, formatFlag},
		Action: func(c *cli.Context) error {
			messageType := c.String(typeFlag.Name)
			if messageType == "" {
				return errMissingType
			}
			input, err := e.readInput(c)
			if err != nil {
				return err
			}

			rec, err := e.proto.Unmarshal(input, messageType)
			if err != nil {
				return fmt.Errorf("decode %s: %w", messageType, err)
			}
			e.log.Debug().Str("type", messageType).Int("bytes", len(input)).Msg("decoded")

			switch format := c.String(formatFlag.Name); format {
			case "json":
				out, err := e.proto.MarshalJSON(rec)
				if err != nil {
					return err
				}
				return writeOutput(c, append(out, '\n'))
			case "yaml":
				out, err := renderYAML(e.proto.ToJSON(rec))
				if err != nil {
					return err
				}
				return writeOutput(c, out)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
}

func inspectCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "inspect",
		Usage: "List the top-level fields of wire bytes without a schema",
		Flags: []cli.Flag{inFlag, hexInputFlag},
		Action: func(c *cli.Context) error {
			input, err := e.readInput(c)
			if err != nil {
				return err
			}

			w := c.App.Writer
			dec := wire.NewDecoder(input)
			for {
				v, err := dec.DecodeField()
				if err != nil {
					return err
				}
				if v == nil {
					return nil
				}
				fmt.Fprintf(w, "%6d  #%-5d %-8s %s\n", v.Offset, v.FieldNumber, wireTypeName(v.WireType), formatRaw(v))
			}
		},
	}
}

func schemaCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "schema",
		Usage: "List registered types, or describe one with --type",
		Flags: []cli.Flag{typeFlag},
		Action: func(c *cli.Context) error {
			var (
				out []byte
				err error
			)
			if name := c.String(typeFlag.Name); name != "" {
				out, err = describeType(e.proto.Registry(), name)
			} else {
				out, err = listTypes(e.proto.Registry())
			}
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(out)
			return err
		},
	}
}

// readInput returns the bytes named by --hex-input or --in, or standard input.
func (e *env) readInput(c *cli.Context) ([]byte, error) {
	if h := c.String(hexInputFlag.Name); h != "" {
		data, err := hex.DecodeString(strings.Join(strings.Fields(h), ""))
		if err != nil {
			return nil, fmt.Errorf("parse --hex-input: %w", err)
		}
		return data, nil
	}
	if path := c.String(inFlag.Name); path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(e.stdin)
}

func writeOutput(c *cli.Context, data []byte) error {
	if path := c.String(outFlag.Name); path != "" {
		return os.WriteFile(path, data, 0o644)
	}
	_, err := c.App.Writer.Write(data)
	return err
}

func wireTypeName(t wire.WireType) string {
	switch t {
	case wire.WireVarint:
		return "varint"
	case wire.WireFixed64:
		return "fixed64"
	case wire.WireBytes:
		return "bytes"
	case wire.WireStartGroup:
		return "group"
	case wire.WireEndGroup:
		return "endgroup"
	case wire.WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wt%d", t)
	}
}

// formatRaw renders a schema-less value: integers in decimal, fixed64 also
// as a double, and length-delimited payloads as text when they look like it.
func formatRaw(v *wire.Value) string {
	switch data := v.Data.(type) {
	case uint64:
		if v.WireType == wire.WireFixed64 {
			return fmt.Sprintf("%d (double %g)", data, math.Float64frombits(data))
		}
		return fmt.Sprintf("%d", data)
	case []byte:
		if isText(data) {
			return fmt.Sprintf("len=%d %q", len(data), data)
		}
		return fmt.Sprintf("len=%d %x", len(data), data)
	default:
		return ""
	}
}

func isText(b []byte) bool {
	if len(b) == 0 || !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r < 0x20 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}
