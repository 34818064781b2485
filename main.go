package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"masm/pkg/asm"
	"masm/pkg/config"
	"masm/pkg/isa"
	"masm/pkg/utils"
)

type options struct {
	configPath string
	listing    bool
	verbose    bool
	trace      bool
	raw        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, asm.ErrFatal) {
			fmt.Println("Error: Could not allocate required memory")
		}
		atexit.Fatalf("masm: %v", err)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "masm [flags] file.as...",
		Short: "Two-pass assembler producing .ob, .ent and .ext files",
		Long: `Masm assembles each source file in the order given. A file with errors
produces no output at all; the remaining files are still assembled.

For a source prog.as the object is written to prog.ob, the entry points to
prog.ent and the external reference sites to prog.ext. The listings are only
written when they are not empty.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, "Error: No input files")
				return nil
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			a, err := asm.NewAssembler(cfg, out)
			if err != nil {
				return err
			}
			atexit.Register(a.Close)
			defer a.Close()
			return assembleAll(out, a, args, opts.listing)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML file overriding the default settings")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pass boundaries")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "log every source line")
	root.Flags().BoolVarP(&opts.listing, "listing", "l", false, "print the symbols of every assembled file")

	isaCmd := &cobra.Command{
		Use:   "isa",
		Short: "Print the instruction set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if opts.raw {
				printRaw(cmd.OutOrStdout(), isa.Instructions)
				return
			}
			asm.RenderInstructions(cmd.OutOrStdout())
		},
	}
	isaCmd.Flags().BoolVar(&opts.raw, "raw", false, "dump the instruction descriptors")
	root.AddCommand(isaCmd)
	return root
}

func setupLogging(opts *options) {
	level := slog.LevelWarn
	switch {
	case opts.trace:
		level = asm.LevelTrace
	case opts.verbose:
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, hopts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, hopts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func printRaw(w io.Writer, v any) {
	p := pp.New()
	p.SetOutput(w)
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		p.SetColoringEnabled(false)
	}
	p.Println(v)
}

// assembleAll assembles every path in turn. Only errors that end the whole
// run are returned.
func assembleAll(out io.Writer, a *asm.Assembler, paths []string, listing bool) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(out, "Error: Could not open '%s'\n", path)
			fmt.Fprintln(out, "Done.")
			continue
		}
		fmt.Fprintf(out, "Assembling %s:\n", path)
		err = assembleOne(out, a, f, path, listing)
		f.Close()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Done.")
	}
	return nil
}

func assembleOne(out io.Writer, a *asm.Assembler, f *os.File, path string, listing bool) error {
	suffix := a.Config().SourceSuffix
	base, err := utils.ValidateSource(path, suffix)
	if err != nil {
		fmt.Fprintf(out, "Error: '%s' does not have '%s' extension\n", path, suffix)
		return nil
	}
	if full, dir, err := utils.GetPathInfo(path); err == nil {
		slog.Debug("assembling", "path", full, "dir", dir)
	}

	res, err := a.AssembleFile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !res.OK() {
		slog.Debug("no output written", "path", path, "errors", len(res.Errors()))
		return nil
	}
	if err := a.Flush(res, utils.FileCreator{Base: base}); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}
	if listing {
		asm.RenderSymbols(out, res)
	}
	return nil
}
