package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/agentforge/agentforge/internal/config"
)

const usage = `Usage: agentforge <command> [flags]

Commands:
  serve     Start the chat API server
  eval      Run eval datasets against a live agent
  validate  Validate eval dataset fixtures

Global flags:
  -config   Path to the config file (default agentforge.yaml)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Local .env files carry secrets in development; absence is fine.
	_ = godotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = handleServe(args)
	case "eval":
		err = handleEval(args)
	case "validate":
		err = handleValidate(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig parses the shared -config flag, loads the file, and builds the
// logger every command uses.
func loadConfig(name string, args []string, extra func(*flag.FlagSet)) (config.Config, *logrus.Logger, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "agentforge.yaml", "path to the config file")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return cfg, logger, fs, nil
}
