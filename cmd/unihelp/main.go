// Command unihelp is the CLI for the UniHelp service.
//
// Usage:
//
//	unihelp serve --config unihelp.yaml
//	unihelp ask "Comment obtenir un certificat de scolarité ?"
//	unihelp email "Internship request" --language en
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/unihelp/unihelp"
	"github.com/unihelp/unihelp/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server."`
	Ask     AskCmd     `cmd:"" help:"Ask a single question and print the answer."`
	Email   EmailCmd   `cmd:"" help:"Generate an administrative email template."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (text or json)." default:"text"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := unihelp.GetVersion()
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "(devel)" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
	}
	fmt.Println(info.String())
	return nil
}

// UniHelp blue: #2563eb = RGB(37, 99, 235), ANSI RGB color mode.
const (
	colorBlue  = "\033[38;2;37;99;235m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

// printBanner prints the colored ASCII banner.
func printBanner() {
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			// Not a terminal, skip banner
			return
		}
	} else {
		return
	}

	banner := `
██╗   ██╗███╗   ██╗██╗██╗  ██╗███████╗██╗     ██████╗
██║   ██║████╗  ██║██║██║  ██║██╔════╝██║     ██╔══██╗
██║   ██║██╔██╗ ██║██║███████║█████╗  ██║     ██████╔╝
██║   ██║██║╚██╗██║██║██╔══██║██╔══╝  ██║     ██╔═══╝
╚██████╔╝██║ ╚████║██║██║  ██║███████╗███████╗██║
 ╚═════╝ ╚═╝  ╚═══╝╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝
`
	fmt.Printf("%s%s%s\n", colorBlue, banner, colorReset)
}

// shouldSkipBanner checks if the command should skip the banner. One-shot
// commands skip it so their output stays pipeable; only serve shows it.
func shouldSkipBanner(args []string) bool {
	for _, arg := range args[1:] {
		if arg == "ask" || arg == "email" || arg == "version" {
			return true
		}
	}
	return false
}

func main() {
	if !shouldSkipBanner(os.Args) {
		printBanner()
	}

	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("unihelp"),
		kong.Description("UniHelp - university administration assistant"),
		kong.UsageOnError(),
	)

	cleanup, err := initLogger(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
