// Package cli implements the phonebook command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/paths"
	"github.com/mesh-intelligence/phonebook/internal/seed"
	"github.com/mesh-intelligence/phonebook/pkg/phonebook"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks invalid arguments.
var errUsage = errors.New("invalid usage")

// userErrors are failures caused by input rather than the system.
var userErrors = []error{
	errUsage,
	types.ErrTableNotFound,
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrUnknownColumn,
	types.ErrReadOnlyColumn,
	types.ErrActionDisabled,
	types.ErrUnsupported,
	types.ErrMissingParent,
	types.ErrUniqueness,
	types.ErrReferential,
	types.ErrRequiredField,
	types.ErrRange,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDatabaseEmpty,
	types.ErrPortInvalid,
	seed.ErrCountRange,
}

// app holds flag values and the configuration resolved for one invocation.
type app struct {
	configDirFlag string
	dataDirFlag   string
	backendFlag   string
	logLevelFlag  string

	configDir string
	settings  settings
	config    types.Config
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "phonebook" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "phonebook",
		Short: "A phone directory backed by SQLite or PostgreSQL",
		Long: "phonebook manages a phone directory: entries that reference names,\n" +
			"surnames, patronymics and streets.",
		Version:           phonebook.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDirFlag, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.dataDirFlag, "data-dir", "", "data directory for the sqlite backend")
	pf.StringVar(&a.backendFlag, "backend", "", "storage backend: sqlite or postgres")
	pf.StringVar(&a.logLevelFlag, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newDuplicateCmd(a),
		newSeedCmd(a),
		newResetCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// setup resolves directories, configuration and logging before a command
// runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDirFlag)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	s, err := loadSettings(v)
	if err != nil {
		return err
	}
	if a.backendFlag != "" {
		s.Backend = a.backendFlag
	}
	if a.logLevelFlag != "" {
		s.LogLevel = a.logLevelFlag
	}

	dataDir, err := paths.ResolveDataDir(a.dataDirFlag, s.DataDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel)
	if err != nil {
		return err
	}

	a.configDir = configDir
	a.settings = s
	a.logger = logger
	a.config = types.Config{Backend: s.Backend, DataDir: dataDir, Postgres: s.Postgres}
	return a.config.Validate()
}

// Execute runs the root command with the process arguments and returns the
// exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", describe(err))
	return exitCode(err)
}

// exitCode maps an error to exitUserError or exitSysError.
func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// describe returns the message shown for err. Store failures show their
// category message; the driver text only goes to the log.
func describe(err error) string {
	var se *types.StoreError
	if errors.As(err, &se) || errors.Is(err, types.ErrMissingParent) {
		return types.UserMessage(err)
	}
	return err.Error()
}
