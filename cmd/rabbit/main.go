package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/rabbit"
	"github.com/oarkflow/rabbit/pkg/config"
	"github.com/oarkflow/rabbit/pkg/history"
)

func main() {
	app := &cli.App{
		Name:  "rabbit",
		Usage: "Run rabbit scripts and inspect their tokens and trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a configuration file (BCL, YAML, or JSON)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level regardless of the configured level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Execute a script file and print its result",
				ArgsUsage: "<script>",
				Action:    runScript,
			},
			{
				Name:      "ast",
				Usage:     "Print a script's syntax tree as JSON",
				ArgsUsage: "<script>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "concrete",
						Usage: "Print the concrete parse tree instead of the typed tree",
					},
				},
				Action: printAST,
			},
			{
				Name:      "tokens",
				Usage:     "Print a script's token stream",
				ArgsUsage: "<script>",
				Action:    printTokens,
			},
			{
				Name:   "builtins",
				Usage:  "List the names the lexer classifies as builtins",
				Action: listBuiltins,
			},
			{
				Name:   "repl",
				Usage:  "Start an interactive session",
				Action: startREPL,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.DefaultLogger.Fatal().Err(err).Msg("rabbit failed")
	}
}

func setup(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	log.DefaultLogger.Level = logLevel(cfg.Logging.Level)
	if c.Bool("verbose") {
		log.DefaultLogger.Level = log.DebugLevel
	}
	applyRuntime(cfg)
	return cfg, nil
}

// applyRuntime pushes file-level runtime settings into the engine,
// leaving engine defaults in place for unset fields.
func applyRuntime(cfg *config.Config) {
	rc := rabbit.GetRuntimeConfig()
	if cfg.Runtime.MaxSourceBytes > 0 {
		rc.MaxSourceBytes = cfg.Runtime.MaxSourceBytes
	}
	if cfg.Runtime.MaxExpressionDepth > 0 {
		rc.MaxExpressionDepth = cfg.Runtime.MaxExpressionDepth
	}
	if cfg.Runtime.CacheEntries > 0 {
		rc.CacheEntries = cfg.Runtime.CacheEntries
	}
	if cfg.Runtime.LogRunExecution != nil {
		rc.LogRunExecution = *cfg.Runtime.LogRunExecution
	}
	rabbit.SetRuntimeConfig(rc)
}

func logLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

func readScript(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("expected a script file argument")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runScript(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	source, err := readScript(c)
	if err != nil {
		return err
	}
	result, err := rabbit.Run(source)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Println(result.Inspect())
	}
	return nil
}

func printAST(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	source, err := readScript(c)
	if err != nil {
		return err
	}
	if c.Bool("concrete") {
		tree, diags, err := rabbit.ParseToTree(source)
		if err != nil {
			return err
		}
		printDiagnostics(diags)
		fmt.Println(tree.String())
		return nil
	}
	program, err := rabbit.Parse(source)
	if err != nil {
		return err
	}
	out, err := rabbit.MarshalAST(program)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printTokens(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	source, err := readScript(c)
	if err != nil {
		return err
	}
	tokens, diags := rabbit.Tokenize(source)
	for _, tok := range tokens {
		fmt.Printf("%-10s %-14q line %d, col %d\n", tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	printDiagnostics(diags)
	return nil
}

func printDiagnostics(diags []rabbit.Diagnostic) {
	for _, diag := range diags {
		fmt.Fprintln(os.Stderr, "warning:", diag.String())
	}
}

func listBuiltins(c *cli.Context) error {
	for _, name := range rabbit.Builtins() {
		fmt.Println(name)
	}
	return nil
}

func startREPL(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	return repl(cfg)
}

func repl(cfg *config.Config) error {
	fmt.Println("Rabbit REPL. Type 'exit' or 'quit' to leave, 'history' for recent lines.")

	session := xid.New().String()
	var store *history.Store
	if cfg.REPL.HistoryPath != "" {
		var err error
		store, err = history.Open(cfg.REPL.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	runner, err := rabbit.NewRunner(rabbit.WithEnvironment(rabbit.NewEnvironment()))
	if err != nil {
		return err
	}

	// Per-line run logging would drown the prompt, so it is switched
	// off for this session only.
	quiet := false
	ctx := rabbit.WithRuntimeConfigOverride(context.Background(), rabbit.RuntimeConfigOverride{
		LogRunExecution: &quiet,
	})

	prompt := cfg.REPL.Prompt
	if prompt == "" {
		prompt = ">> "
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if line == "history" {
			showHistory(store)
			continue
		}
		if store != nil {
			_ = store.Append(history.Entry{Session: session, Line: line, At: time.Now()})
		}
		result, err := runner.RunContext(ctx, line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if result != nil {
			fmt.Println(result.Inspect())
		}
	}
	return scanner.Err()
}

func showHistory(store *history.Store) {
	if store == nil {
		fmt.Println("history is not enabled; set repl.history_path in the config")
		return
	}
	entries, err := store.Recent(20)
	if err != nil {
		fmt.Println("reading history:", err)
		return
	}
	for _, entry := range entries {
		fmt.Printf("%s  %s\n", entry.At.Format(time.DateTime), entry.Line)
	}
}
