package output

import (
	"fmt"
	"io"

	"crtsubs/features/enumerator"

	"github.com/fatih/color"
)

// Console prints results for a human reader. Headings are colored when the
// writer is a terminal; hostnames are always plain.
type Console struct {
	out     io.Writer
	heading *color.Color
	notice  *color.Color
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		heading: color.New(color.FgGreen, color.Bold),
		notice:  color.New(color.FgYellow),
	}
}

// Subdomains prints the result of a single-domain run.
func (c *Console) Subdomains(domain string, hosts []string) error {
	if _, err := c.heading.Fprintf(c.out, "Subdomains of %s:\n", domain); err != nil {
		return err
	}
	return c.lines(hosts)
}

// Total prints the unique union of a list run, or a notice when it is empty.
func (c *Console) Total(listFile string, hosts []string) error {
	if len(hosts) == 0 {
		_, err := c.notice.Fprintf(c.out, "No subdomains found for the domains in %s.\n", listFile)
		return err
	}

	if _, err := c.heading.Fprintln(c.out, "Total subdomains found:"); err != nil {
		return err
	}
	return c.lines(hosts)
}

// Usage prints the hint shown when no domain source was given.
func (c *Console) Usage() error {
	_, err := c.notice.Fprintln(c.out, "Please provide a domain with -d or a file with -l.")
	return err
}

// NewHostnames prints hostnames first seen during a watch pass.
func (c *Console) NewHostnames(domain string, hosts []string) error {
	if len(hosts) == 0 {
		return nil
	}
	if _, err := c.heading.Fprintf(c.out, "New subdomains of %s:\n", domain); err != nil {
		return err
	}
	return c.lines(hosts)
}

func (c *Console) lines(hosts []string) error {
	for _, h := range hosts {
		if _, err := fmt.Fprintln(c.out, h); err != nil {
			return err
		}
	}
	return nil
}

// Discard is a sink that keeps nothing; the batch still collects results.
var Discard enumerator.Sink = enumerator.SinkFunc(func(*enumerator.Result) error { return nil })
