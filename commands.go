package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"schedule-planner/core"
	"schedule-planner/pkg/resources"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message to the assistant and print the resulting schedule.",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the schedule as JSON instead of one line per event."},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("a message is required")
			}

			cfg := resources.LoadConfig(name, version)
			ctx := resources.CreateLogger(c.Context, cfg)

			adapter, channel, err := buildCore(cfg)
			if err != nil {
				return fmt.Errorf("unable to load the initial schedule: %w", err)
			}

			exchange, err := channel.Submit(ctx, text)
			if err != nil {
				return fmt.Errorf("unable to submit message: %w", err)
			}

			out := c.App.Writer
			fmt.Fprintf(out, "assistant (%s): %s\n", exchange.Outcome, exchange.Message.Content)

			events := adapter.RenderInput(ctx)
			if c.Bool("json") {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(events)
			}

			for _, event := range events {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", event.Id, event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339), event.Title)
			}

			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the initial schedule as an iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Destination file, stdout when empty."},
		},
		Action: func(c *cli.Context) error {
			cfg := resources.LoadConfig(name, version)
			_ = resources.CreateLogger(c.Context, cfg)

			adapter, _, err := buildCore(cfg)
			if err != nil {
				return fmt.Errorf("unable to load the initial schedule: %w", err)
			}

			events := adapter.RenderInput(c.Context)

			out := c.App.Writer
			if path := c.String("out"); path != "" {
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("unable to create %s: %w", path, err)
				}
				defer file.Close()

				out = file
			}

			return core.ExportICS(out, events, time.Now())
		},
	}
}
