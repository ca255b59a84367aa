package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/unihelp/unihelp/pkg/assistant"
)

// AskCmd asks a single question and prints the answer.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask."`
	Language string `short:"l" help:"Answer language (fr, en, tn)."`
	Session  string `short:"s" help:"Session id to continue a previous conversation."`
}

func (c *AskCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	app, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.assistant.Ask(context.Background(), assistant.AskRequest{
		SessionID: c.Session,
		Question:  c.Question,
		Language:  c.Language,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if isTerminal(os.Stdout) {
		fmt.Printf("\n%ssession %s", colorDim, resp.SessionID)
		if resp.Model != "" {
			fmt.Printf(" | model %s", resp.Model)
		}
		switch {
		case resp.Cached:
			fmt.Print(" | cached")
		case resp.QuickReply:
			fmt.Print(" | quick reply")
		case resp.Fallback:
			fmt.Print(" | fallback")
		}
		fmt.Printf("%s\n", colorReset)
	}
	return nil
}

// EmailCmd generates one administrative email template.
type EmailCmd struct {
	Type     string `arg:"" help:"Email type: Enrollment certificate, Internship request, Absence justification, or Complaint."`
	Language string `short:"l" help:"Email language (fr, en, tn)."`
}

func (c *EmailCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	app, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.assistant.GenerateEmail(context.Background(), assistant.EmailRequest{
		EmailType: c.Type,
		Language:  c.Language,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Email)
	if isTerminal(os.Stdout) {
		fmt.Printf("\n%ssession %s", colorDim, resp.SessionID)
		if resp.Model != "" {
			fmt.Printf(" | model %s", resp.Model)
		}
		if resp.Fallback {
			fmt.Print(" | fallback")
		}
		fmt.Printf("%s\n", colorReset)
	}
	return nil
}

// isTerminal checks if the file descriptor is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
