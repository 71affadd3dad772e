// Kaiwa-repl is an interactive terminal front end for the Kaiwa chatbot.
//
// It reads lines from stdin, resolves each through the same pipeline as the
// HTTP server, and prints the resolved tag, confidence, and reply. Useful
// for trying out an intents file or tuning the confidence threshold without
// running the server.
//
// Configuration follows cmd/kaiwa (environment variables plus optional .env
// and KAIWA_CONFIG_FILE).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bdobrica/Kaiwa/common/version"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/app"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/config"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/observability"
)

func main() {
	godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	observability.Setup(cfg.LogLevel, cfg.LogFormat)

	a, err := app.New(cfg, slog.Default())
	if err != nil {
		slog.Error("failed to initialize kaiwa", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	fmt.Printf("kaiwa %s: %d intents loaded. Type a message, or /quit to exit.\n",
		version.Version, a.Catalog.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "/train "); ok {
			// /train <tag> <example message>
			tag, example, found := strings.Cut(strings.TrimSpace(rest), " ")
			if !found || strings.TrimSpace(example) == "" {
				fmt.Println("usage: /train <tag> <example message>")
				continue
			}
			if a.Pipeline.AddTrainingExample(strings.TrimSpace(example), tag) {
				fmt.Printf("added training example to %q\n", tag)
			} else {
				fmt.Printf("unknown tag %q\n", tag)
			}
			continue
		}

		result := a.Pipeline.Match(context.Background(), line)
		fmt.Printf("kaiwa> %s\n       [%s %.3f]\n", result.Response, result.Tag, result.Confidence)
	}

	if err := scanner.Err(); err != nil {
		slog.Error("stdin read failed", "err", err)
		os.Exit(1)
	}
}
