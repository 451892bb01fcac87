// Package cliadapter is the command-line surface of the screener.
package cliadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kirillkom/resume-screener/internal/bootstrap"
	"github.com/kirillkom/resume-screener/internal/config"
	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/normalize"
	"github.com/kirillkom/resume-screener/internal/core/ports"
	"github.com/kirillkom/resume-screener/internal/infrastructure/extractor"
	natsqueue "github.com/kirillkom/resume-screener/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-screener/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-screener/internal/observability/logging"
)

// NewApp builds the screener command tree. Output goes to the app's Writer, diagnostics to
// ErrWriter.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "screener",
		Usage: "classify resumes into job categories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"SCREENER_LOG_LEVEL"},
				Usage:   "debug, info, warn or error; logs go to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "predict the category of one or more resumes",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print one JSON screening per line"},
					&cli.BoolFlag{Name: "text", Usage: "include extracted and normalized text"},
					&cli.StringFlag{Name: "remote", Usage: "NATS URL of a screening worker; the local pipeline is used when empty"},
				},
				Action: classifyAction,
			},
			{
				Name:      "normalize",
				Usage:     "print the normalized text of a resume",
				ArgsUsage: "FILE",
				Action:    normalizeAction,
			},
			{
				Name:   "categories",
				Usage:  "list the categories the loaded model can predict",
				Action: categoriesAction,
			},
		},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	return logging.NewJSONLoggerTo(c.App.ErrWriter, "screener-cli", c.String("log-level"))
}

func classifyAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("classify: at least one FILE is required")
	}

	cfg := config.Load()
	logger := newLogger(c)

	var (
		screener ports.ResumeScreener
		closeFn  func()
	)
	if remote := c.String("remote"); remote != "" {
		conn, err := natsqueue.Connect(remote, natsqueue.Options{Name: "resume-screener-cli", Logger: logger})
		if err != nil {
			return fmt.Errorf("connect %s: %w", remote, err)
		}
		screener = natsqueue.NewClient(
			conn,
			cfg.ScreenSubject,
			time.Duration(cfg.NATSRequestTimeoutSec)*time.Second,
			resilience.NewExecutor(bootstrap.ResilienceConfig(cfg), logger),
		)
		closeFn = conn.Close
	} else {
		app, err := bootstrap.New(c.Context, cfg, bootstrap.Options{Logger: logger, DisableHistory: true})
		if err != nil {
			return err
		}
		screener = app.Screener
		closeFn = app.Close
	}
	defer closeFn()

	return classifyFiles(c.Context, screener, files, c.App.Writer, c.App.ErrWriter, c.Bool("json"), c.Bool("text"))
}

// classifyFiles screens each file in turn. A failing file is reported and skipped.
func classifyFiles(ctx context.Context, screener ports.ResumeScreener, files []string, out, errOut io.Writer, asJSON, withText bool) error {
	encoder := json.NewEncoder(out)
	failed := 0
	for _, path := range files {
		payload, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			failed++
			continue
		}

		screening, err := screener.Screen(ctx, filepath.Base(path), payload)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %s: %v\n", path, domain.KindName(err), err)
			failed++
			continue
		}

		if !withText {
			stripped := screening.WithoutText()
			screening = &stripped
		}
		if asJSON {
			if err := encoder.Encode(screening); err != nil {
				return fmt.Errorf("encode screening: %w", err)
			}
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", path, screening.Category)
		if withText {
			fmt.Fprintf(out, "%s\n\n", screening.NormalizedText)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func normalizeAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("normalize: exactly one FILE is required")
	}
	path := c.Args().First()
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text, err := extractor.New().Extract(c.Context, domain.NewDocument(filepath.Base(path), payload))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintln(c.App.Writer, normalize.New().Normalize(text))
	return nil
}

func categoriesAction(c *cli.Context) error {
	app, err := bootstrap.New(c.Context, config.Load(), bootstrap.Options{Logger: newLogger(c), DisableHistory: true})
	if err != nil {
		return err
	}
	defer app.Close()

	for _, name := range app.Screener.Categories() {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}
