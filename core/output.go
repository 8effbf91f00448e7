package core

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Console colors
var (
	ColorRed     = color.New(color.FgRed, color.Bold)
	ColorGreen   = color.New(color.FgGreen, color.Bold)
	ColorYellow  = color.New(color.FgYellow, color.Bold)
	ColorMagenta = color.New(color.FgMagenta, color.Bold)
	ColorCyan    = color.New(color.FgCyan, color.Bold)
)

// Finding is a subdomain extracted from a file on GitHub
type Finding struct {
	Subdomain string `json:"subdomain"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewFinding creates a Finding with timestamp auto-populated
func NewFinding(subdomain, source string) Finding {
	return Finding{
		Subdomain: subdomain,
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Output handles writing results to the console and an optional file.
// The file never receives color sequences.
type Output struct {
	file       *os.File
	writer     *bufio.Writer
	console    io.Writer
	jsonOutput bool
	quiet      bool
	mu         sync.Mutex
	Callback   func(Finding) // Optional callback for captures
}

// NewOutput creates a new Output handler
func NewOutput(filename string, jsonOutput, quiet bool) (*Output, error) {
	o := &Output{
		console:    color.Output,
		jsonOutput: jsonOutput,
		quiet:      quiet,
	}

	if filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return nil, err
		}
		o.file = file
		o.writer = bufio.NewWriter(file)
	}

	return o, nil
}

// SetConsole redirects console output
func (o *Output) SetConsole(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.console = w
}

// HasFile reports whether results are persisted
func (o *Output) HasFile() bool {
	return o.file != nil
}

// Flush writes buffered file output to disk
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.writer != nil {
		return o.writer.Flush()
	}
	return nil
}

// Close flushes and closes the output file
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.writer != nil {
		if err := o.writer.Flush(); err != nil {
			return err
		}
	}
	if o.file != nil {
		err := o.file.Close()
		o.file = nil
		o.writer = nil
		return err
	}
	return nil
}

// WriteBlock writes the findings of a single file as one uninterrupted block.
// A non-empty source is printed as a header ahead of the subdomains.
func (o *Output) WriteBlock(source string, findings []Finding) {
	if len(findings) == 0 {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	var console strings.Builder
	if source != "" {
		console.WriteString(ColorYellow.Sprintf(">>> %s", source))
		console.WriteString("\n\n")
	}
	for _, f := range findings {
		if o.Callback != nil {
			o.Callback(f)
		}
		console.WriteString(ColorGreen.Sprint(f.Subdomain))
		console.WriteString("\n")
	}

	block := strings.TrimSpace(console.String())
	if !o.quiet {
		fmt.Fprintln(o.console, block)
	}

	if o.writer == nil {
		return
	}
	if o.jsonOutput {
		for _, f := range findings {
			data, _ := json.Marshal(f)
			o.writer.Write(data)
			o.writer.WriteString("\n")
		}
		return
	}
	o.writer.WriteString(StripANSI(block) + "\n")
}

// WriteLine writes a single plain line to the file and, unless quiet, the console
func (o *Output) WriteLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.quiet {
		fmt.Fprintln(o.console, line)
	}
	if o.writer != nil {
		o.writer.WriteString(StripANSI(line) + "\n")
	}
}

// Info prints a cyan [*] status line
func Info(format string, args ...any) { printTagged(ColorCyan, "[*]", format, args) }

// Success prints a green [+] status line
func Success(format string, args ...any) { printTagged(ColorGreen, "[+]", format, args) }

// Warning prints a yellow [!] status line
func Warning(format string, args ...any) { printTagged(ColorYellow, "[!]", format, args) }

// Error prints a red [-] status line
func Error(format string, args ...any) { printTagged(ColorRed, "[-]", format, args) }

func printTagged(c *color.Color, tag, format string, args []any) {
	c.Fprint(color.Output, tag+" ")
	fmt.Fprintf(color.Output, format+"\n", args...)
}

// Banner is the tool banner shown on bare invocation and --help
const Banner = `
   ____   _____  _____  _  _
  / __ \ / ____|/ ____|(_)| |
 | |  | | (___ | |  __  _ | |_
 | |  | |\___ \| | |_ || || __|
 | |__| |____) | |__| || || |_
  \____/|_____/ \_____||_| \__|
`

// PrintBanner prints the tool banner
func PrintBanner(version string) {
	ColorCyan.Print(Banner)
	ColorYellow.Println("        GitHub OSINT for subdomains and repository paths")
	ColorMagenta.Printf("                                        %s\n", version)
	fmt.Println()
}
