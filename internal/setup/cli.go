package setup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// CLI implements the "setup" subcommand of the MCP server binary.
type CLI struct {
	out        io.Writer
	executable func() (string, error)
}

// NewCLI creates a setup CLI writing to out.
func NewCLI(out io.Writer) *CLI {
	return &CLI{out: out, executable: os.Executable}
}

// Run executes the setup command named by args[0].
func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		c.showHelp()
		return nil
	}

	switch args[0] {
	case "register":
		return c.register(args[1:])
	case "status":
		return c.status(args[1:])
	case "help", "--help", "-h":
		c.showHelp()
		return nil
	default:
		fmt.Fprintf(c.out, "Unknown command: %s\n\n", args[0])
		c.showHelp()
		return fmt.Errorf("unknown setup command %q", args[0])
	}
}

func (c *CLI) showHelp() {
	fmt.Fprint(c.out, `Medemi triage MCP server setup

Usage:
  mcp-server setup <command> [options]

Commands:
  register   Add the triage server to the desktop client's MCP configuration
  status     Show the current registration

Options:
  --binary PATH         server binary (default: this executable)
  --server-config PATH  config.yaml passed to the server
  --client-config PATH  desktop client configuration file
`)
}

func (c *CLI) register(args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	fs.SetOutput(c.out)
	binary := fs.String("binary", "", "server binary")
	serverConfig := fs.String("server-config", "", "config.yaml passed to the server")
	clientConfig := fs.String("client-config", "", "desktop client configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *binary == "" {
		exe, err := c.executable()
		if err != nil {
			return fmt.Errorf("locating server binary: %w", err)
		}
		*binary = exe
	}

	path, err := Register(Options{
		ConfigPath:   *clientConfig,
		BinaryPath:   *binary,
		ServerConfig: *serverConfig,
	})
	if err != nil {
		return fmt.Errorf("failed to register server: %w", err)
	}

	fmt.Fprintf(c.out, "Registered %q in %s\n", ServerKey, path)
	fmt.Fprintln(c.out, "Restart the desktop client to load the new configuration.")
	return nil
}

func (c *CLI) status(args []string) error {
	fs := pflag.NewFlagSet("status", pflag.ContinueOnError)
	fs.SetOutput(c.out)
	clientConfig := fs.String("client-config", "", "desktop client configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	status, err := GetStatus(*clientConfig)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Client config: %s\n", status.ConfigPath)
	if status.Registered {
		fmt.Fprintf(c.out, "Registered:    yes (%s)\n", status.Entry.Command)
	} else {
		fmt.Fprintln(c.out, "Registered:    no")
	}
	for _, issue := range status.Issues {
		fmt.Fprintf(c.out, "  ! %s\n", issue)
	}
	return nil
}
