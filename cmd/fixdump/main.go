// Command fixdump reads FIX byte streams from files or stdin, validates every frame and prints it.
//
//	fixdump [-fields] [-delim='|'] [-colour=yes|no] [file ...]
//
// Frames that fail validation are reported with the parse error and skipped; dumping resumes
// at the next frame. The exit code is 1 when any frame failed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/arloliu/go-fix/fix"
)

const (
	ansiReset = "\x1b[0m"
	ansiTag   = "\x1b[36m"
	ansiType  = "\x1b[1;33m"
	ansiError = "\x1b[31m"
)

type colourFlag struct {
	isSet bool
	value bool
}

func (c *colourFlag) String() string {
	if c.value {
		return "true"
	}

	return "false"
}

func (c *colourFlag) Set(s string) error {
	c.isSet = true
	switch strings.ToLower(s) {
	case "", "true", "yes":
		c.value = true
	case "false", "no":
		c.value = false
	default:
		return fmt.Errorf("invalid value for -colour: %q", s)
	}

	return nil
}

func (c *colourFlag) IsBoolFlag() bool { return true }

type options struct {
	fields bool
	delim  string
	colour colourFlag
	files  []string
}

func parseArgs(args []string, errOut io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("fixdump", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.BoolVar(&opts.fields, "fields", false, "Print one field per line")
	fs.StringVar(&opts.delim, "delim", "", "Field delimiter used in the input instead of SOH, e.g. '|'")
	fs.Var(&opts.colour, "colour", "Force coloured output (yes|no). Default: auto-detect based on stdout")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if len(opts.delim) > 1 {
		return opts, fmt.Errorf("delimiter must be a single byte: %q", opts.delim)
	}

	opts.files = fs.Args()
	if len(opts.files) == 0 {
		opts.files = []string{"-"}
	}

	return opts, nil
}

// dumper prints frames and counts failures.
type dumper struct {
	out    io.Writer
	fields bool
	colour bool
	frames int
	errors int
}

func (d *dumper) paint(code string, s string) string {
	if !d.colour {
		return s
	}

	return code + s + ansiReset
}

func (d *dumper) dump(name string, r io.Reader) error {
	fr := fix.NewReader(r)
	for {
		msg, err := fr.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			var perr *fix.ParseError
			if errors.As(err, &perr) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.errors++
				fmt.Fprintln(d.out, d.paint(ansiError, fmt.Sprintf("%s: invalid frame: %v", name, err)))

				continue
			}

			return fmt.Errorf("%s: %w", name, err)
		}

		d.frames++
		d.print(msg)
	}
}

func (d *dumper) print(msg *fix.Message) {
	seq, _ := msg.GetString(fix.TagMsgSeqNum)
	fmt.Fprintf(d.out, "#%d %s 35=%s 34=%s len=%d sum=%03d\n",
		d.frames, msg.BeginString, d.paint(ansiType, string(msg.MsgType())), seq, msg.BodyLength, msg.CheckSum)

	if !d.fields {
		fmt.Fprintln(d.out, "  "+d.line(msg))
		return
	}

	for _, f := range msg.Fields {
		fmt.Fprintf(d.out, "  %s = %s\n", d.paint(ansiTag, strconv.Itoa(f.Tag)), f.Value)
	}
}

func (d *dumper) line(msg *fix.Message) string {
	var sb strings.Builder
	for i, f := range msg.Fields {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(d.paint(ansiTag, strconv.Itoa(f.Tag)))
		sb.WriteByte('=')
		sb.Write(f.Value)
	}

	return sb.String()
}

// delimReader replaces delim with SOH.
type delimReader struct {
	r     io.Reader
	delim byte
}

func (d *delimReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	for i := range p[:n] {
		if p[i] == d.delim {
			p[i] = fix.SOH
		}
	}

	return n, err
}

// Process parses args, dumps every input and returns the exit code.
func Process(args []string, stdin io.Reader, out io.Writer, errOut io.Writer) int {
	opts, err := parseArgs(args, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	d := &dumper{out: out, fields: opts.fields}
	if opts.colour.isSet {
		d.colour = opts.colour.value
	} else if f, ok := out.(*os.File); ok {
		d.colour = term.IsTerminal(int(f.Fd()))
	}

	for _, name := range opts.files {
		var r io.Reader
		if name == "-" {
			r = stdin
		} else {
			f, err := os.Open(name)
			if err != nil {
				fmt.Fprintln(errOut, err)
				return 1
			}
			defer f.Close()
			r = f
		}

		if opts.delim != "" {
			r = &delimReader{r: r, delim: opts.delim[0]}
		}

		if err := d.dump(name, r); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	fmt.Fprintf(errOut, "frames=%d errors=%d\n", d.frames, d.errors)
	if d.errors > 0 {
		return 1
	}

	return 0
}

func main() {
	os.Exit(Process(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
