package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "tree"

// version is the application version, set via ldflags.
var version = "dev"

// config is the fully resolved set of settings for one run:
// defaults < config file < TREE_* environment < flags.
type config struct {
	ShowFiles   bool
	ASCII       bool
	GlyphSet    string
	GlyphsFile  string
	Gitignore   bool
	Exclude     string
	OutputFile  string
	Clipboard   bool
	Interactive bool
	LogLevel    string
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   appName + " [PATH]",
		Short: "Graphically displays the folder structure of a drive or path.",
		Long: `tree draws the folders below PATH (or the current directory) using
box-drawing characters. Entries appear in the order the filesystem lists them.
PATH may also be a git URL, which is cloned to a temporary directory first.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config{
				ShowFiles:   v.GetBool("files"),
				ASCII:       v.GetBool("ascii"),
				GlyphSet:    v.GetString("glyphs"),
				GlyphsFile:  v.GetString("glyphs_file"),
				Gitignore:   v.GetBool("gitignore"),
				Exclude:     v.GetString("exclude"),
				OutputFile:  v.GetString("output"),
				Clipboard:   v.GetBool("clipboard"),
				Interactive: v.GetBool("interactive"),
				LogLevel:    v.GetString("log_level"),
			}
			return run(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tree/config.toml)")

	flags := cmd.Flags()
	flags.BoolP("files", "f", false, "Display the names of the files in each folder")
	flags.BoolP("ascii", "a", false, "Use ASCII instead of extended characters")
	flags.String("glyphs", "", "Named glyph set to draw with (unicode, ascii, or one from the glyph file)")
	flags.String("glyphs-file", "", "YAML file defining extra glyph sets")
	flags.Bool("gitignore", false, "Hide entries matched by the root's .gitignore")
	flags.StringP("exclude", "e", "", "Comma-separated glob patterns of names to hide")
	flags.StringP("output", "o", "", "Write the tree to a file instead of stdout")
	flags.BoolP("clipboard", "c", false, "Copy the tree to the clipboard")
	flags.BoolP("interactive", "i", false, "Pick the folder to draw with a fuzzy finder")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"files":       "files",
		"ascii":       "ascii",
		"glyphs":      "glyphs",
		"glyphs_file": "glyphs-file",
		"gitignore":   "gitignore",
		"exclude":     "exclude",
		"output":      "output",
		"clipboard":   "clipboard",
		"interactive": "interactive",
		"log_level":   "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	v.SetDefault("log_level", "warn")

	return cmd
}

// initConfig reads in the config file and TREE_* environment variables.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// run resolves the root, renders it to the selected sink, and reports an
// empty tree the way the classic tool does.
func run(ctx context.Context, cfg config, args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "Too many parameters - %s\n\n", args[1])
		return nil
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	glyphs, err := selectGlyphs(cfg)
	if err != nil {
		return err
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	}

	header := "."
	root := input
	exclude := cfg.Exclude
	if isGitURL(input) {
		tempDir, err := cloneGitRepo(ctx, input, stderr, logger)
		if err != nil {
			return err
		}
		defer func() {
			logger.Debug("removing clone", zap.String("dir", tempDir))
			_ = os.RemoveAll(tempDir)
		}()
		header = input
		root = tempDir
		// The clone's own metadata is not part of the repository's content.
		exclude = joinPatterns(exclude, ".git")
	} else if input != "" {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("error resolving path %s: %w", input, err)
		}
		header = abs
		root = abs
	} else {
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("error getting working directory: %w", err)
		}
	}

	if !isDir(root) {
		fmt.Fprintf(stderr, "Invalid path - %s\n", input)
		fmt.Fprint(stderr, "No subfolders exist\n\n")
		return nil
	}

	filter, err := newFilter(root, exclude, cfg.Gitignore, logger)
	if err != nil {
		return err
	}
	renderer := NewRenderer(NewScanner(filter), Options{ShowFiles: cfg.ShowFiles, Glyphs: glyphs}, logger)

	if cfg.Interactive {
		picked, err := runInteractiveFinder(ctx, root, renderer)
		if err != nil {
			return err
		}
		if picked == "" {
			logger.Info("interactive selection aborted")
			return nil
		}
		root = picked
		header = picked
		// The filter's .gitignore and the new root may disagree; reload.
		filter, err = newFilter(root, exclude, cfg.Gitignore, logger)
		if err != nil {
			return err
		}
		renderer = NewRenderer(NewScanner(filter), renderer.opts, logger)
	}

	sink, err := openSink(cfg, stdout, logger)
	if err != nil {
		return err
	}

	err = sink.WriteLine(header)
	if err == nil {
		err = renderer.Walk(ctx, root, sink.WriteLine)
	}
	if err := finishSink(sink, err); err != nil {
		return err
	}
	if cfg.OutputFile != "" {
		logger.Info("output saved", zap.String("file", cfg.OutputFile))
	}

	if !renderer.scanner.HasAnyChildDirectory(root) {
		fmt.Fprint(stderr, "No subfolders exist\n\n")
	}
	return nil
}

// selectGlyphs picks the glyph set: --glyphs wins, then --ascii, then Unicode.
func selectGlyphs(cfg config) (GlyphSet, error) {
	if cfg.GlyphSet == "" && cfg.GlyphsFile == "" {
		if cfg.ASCII {
			return ASCIIGlyphs, nil
		}
		return UnicodeGlyphs, nil
	}

	registry, err := loadGlyphRegistry(cfg.GlyphsFile)
	if err != nil {
		return GlyphSet{}, err
	}
	name := cfg.GlyphSet
	if name == "" {
		name = glyphSetUnicode
		if cfg.ASCII {
			name = glyphSetASCII
		}
	}
	return registry.Lookup(name)
}

func openSink(cfg config, stdout io.Writer, logger *zap.Logger) (lineSink, error) {
	switch {
	case cfg.OutputFile != "":
		return newFileSink(cfg.OutputFile)
	case cfg.Clipboard:
		return newClipboardSink(stdout, logger), nil
	default:
		return newStreamSink(stdout), nil
	}
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
