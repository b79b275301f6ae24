package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tjfontaine/secretagent/internal/telemetry"
	"github.com/tjfontaine/secretagent/pkg/secretagent"
)

type cli struct {
	// Global flags
	configPath string
	service    string
	model      string
	echo       bool
	logLevel   string
	logJSON    bool
	trace      bool

	logger *slog.Logger
	agent  *secretagent.Agent
	stubs  *demoStubs

	// registry replaces the built-in backends when set (tests).
	registry       *secretagent.Registry
	shutdownTracer func(context.Context) error
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "secretagent",
		Short: "Call functions whose bodies are answered by a language model",
		Long: `secretagent declares functions by name, typed parameters, return type, and
documentation, and answers each call by prompting a language model.

The service and model come from secretagent.yaml, SECRETAGENT_* environment
variables, or the --service and --model flags.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "configuration file (default secretagent.yaml)")
	flags.StringVar(&c.service, "service", "", "service to call (openai, anthropic, gemini, together, ollama, null)")
	flags.StringVar(&c.model, "model", "", "model to request from the service")
	flags.BoolVar(&c.echo, "echo", false, "trace each call and the service used")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&c.logJSON, "log-json", false, "log as JSON")
	flags.BoolVar(&c.trace, "trace", false, "export trace spans to stderr")

	root.AddCommand(
		newTranslateCmd(c),
		newSportsCmd(c),
		newRunsCmd(c),
		newServeCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger, err := newLogger(cmd.ErrOrStderr(), c.logLevel, c.logJSON)
	if err != nil {
		return err
	}
	c.logger = logger
	slog.SetDefault(logger)

	if c.trace {
		shutdown, err := telemetry.Init(telemetry.Config{
			ServiceName: "secretagent",
			Writer:      cmd.ErrOrStderr(),
			Pretty:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize tracer: %w", err)
		}
		c.shutdownTracer = shutdown
	}

	settings, err := secretagent.LoadSettings(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := []secretagent.Option{
		secretagent.WithSettings(settings),
		secretagent.WithLogger(logger),
		secretagent.WithOutput(cmd.OutOrStdout()),
	}
	if c.registry != nil {
		opts = append(opts, secretagent.WithRegistry(c.registry))
	}
	agent, err := secretagent.New(opts...)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}

	overrides := secretagent.Options{}
	if c.service != "" {
		overrides[secretagent.KeyService] = c.service
	}
	if c.model != "" {
		overrides[secretagent.KeyModel] = c.model
	}
	if c.echo {
		overrides[secretagent.KeyEchoCall] = true
		overrides[secretagent.KeyEchoService] = true
	}
	if err := agent.Configure(overrides); err != nil {
		return err
	}

	stubs, err := declareStubs(agent)
	if err != nil {
		return err
	}
	c.agent = agent
	c.stubs = stubs
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.shutdownTracer == nil {
		return nil
	}
	if err := c.shutdownTracer(context.Background()); err != nil {
		c.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
	}
	return nil
}

func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
