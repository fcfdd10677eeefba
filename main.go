package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"gopkg.wirelang.org/wirec/internal/compiler"
	"gopkg.wirelang.org/wirec/internal/fs"
	"gopkg.wirelang.org/wirec/internal/wir"
)

type opts struct {
	Roots        []string
	Output       string
	UseFloats    bool
	EvalPi       bool
	SkipValidate bool
	DumpTokens   bool
	Verbose      bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("wirec", pflag.PanicOnError)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for includes.")
	flags.StringVar(&op.Output, "output", "-", "Output directory or - for STDOUT.")
	flags.BoolVar(&op.UseFloats, "use-floats", true, "Convert decimal and complex values to floats.")
	flags.BoolVar(&op.EvalPi, "eval-pi", false, "Evaluate PI numerically instead of keeping it symbolic.")
	flags.BoolVar(&op.SkipValidate, "skip-validate", false, "Skip semantic validation of compiled programs.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed.")
	flags.BoolVar(&op.Verbose, "verbose", false, "Enable debug logging.")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !op.Verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	f, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build default file system")
	}

	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			log.Fatal().Err(errAbs).Str("root", root).Msg("could not resolve root")
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			log.Fatal().Err(err).Str("root", absRoot).Msg("could not open root")
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build compiler")
	}

	out, err := c.Compile(ctx, &wir.CompileRequest{
		Files:      targets,
		UseFloats:  op.UseFloats,
		EvalPi:     op.EvalPi,
		Validate:   !op.SkipValidate,
		DumpTokens: op.DumpTokens,
	})
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, err := range me {
				fmt.Fprintln(os.Stderr, err.Error())
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	for offset, program := range out.Programs {
		for _, warning := range program.Warnings() {
			log.Warn().Msg(warning)
		}
		log.Debug().
			Str("version", program.Version()).
			Bool("useFloats", program.UseFloats()).
			Msg("compiled program")
		if op.Output == "-" {
			fmt.Println(program)
			continue
		}
		name := fmt.Sprintf("program_%d%s", offset, fs.FileExt)
		if offset < len(targets) {
			name = filepath.Base(targets[offset])
		}
		filename := filepath.Join(op.Output, name)
		if err := os.MkdirAll(filepath.Dir(filename), 0o770); err != nil {
			log.Fatal().Err(err).Msg("could not create output directory")
		}
		if err := os.WriteFile(filename, []byte(program.String()+"\n"), 0o644); err != nil {
			log.Fatal().Err(err).Msg("could not write output")
		}
	}
}
