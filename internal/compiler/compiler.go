package compiler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/fs"
	"gopkg.wirelang.org/wirec/internal/wir"
)

type Option func(c *compiler) error

func OptionWithFS(fs wir.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func New(opts ...Option) (wir.Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             wir.FileSystem
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
}

func (self *compiler) Compile(ctx context.Context, req *wir.CompileRequest) (*wir.CompileResponse, error) {
	targets := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		targets = append(targets, self.targetURI(ctx, f))
	}
	files := make([]wir.File, 0, len(targets))
	for _, target := range targets {
		in, err := self.FS.Open(ctx, target)
		if err != nil {
			return nil, err
		}
		for _, inf := range in {
			if inf.Kind(ctx) == wir.FileKindNone {
				continue
			}
			files = append(files, inf)
		}
	}

	programs := make([]*wir.Program, len(files))
	loaded := &sync.Map{}
	results := make(chan fileResult)
	for offset, file := range files {
		go func(offset int, file wir.File) {
			program, err := self.compileFile(ctx, file, loaded, req)
			results <- fileResult{offset, program, err}
		}(offset, file)
	}
	for x := 0; x < len(files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				return nil, result.err
			}
			programs[result.offset] = result.program
		}
	}

	final := &wir.CompileResponse{}
	for offset, program := range programs {
		if program == nil {
			continue
		}
		if len(program.Includes()) > 0 {
			resolved, err := self.resolveIncludes(ctx, files[offset].Path(ctx), program, req)
			if err != nil {
				return nil, err
			}
			program = resolved
		}
		if req.Validate {
			if err := NewValidator(program).Run(); err != nil {
				return final, err
			}
		}
		final.Programs = append(final.Programs, program)
	}

	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return final, MultiException(caught)
	}
	return final, nil
}

// resolveIncludes compiles every include reachable from the program and
// flattens their contents into it.
func (self *compiler) resolveIncludes(ctx context.Context, uri string, program *wir.Program, req *wir.CompileRequest) (*wir.Program, error) {
	key := wir.IncludeKey(uri)
	library := map[string]*wir.Program{key: program}
	if err := self.loadIncludes(ctx, program, library, req); err != nil {
		return nil, err
	}
	return wir.Resolve(library, key)
}

func (self *compiler) loadIncludes(ctx context.Context, program *wir.Program, library map[string]*wir.Program, req *wir.CompileRequest) error {
	for _, include := range program.Includes() {
		key := wir.IncludeKey(include)
		if _, ok := library[key]; ok {
			continue
		}
		in, err := self.FS.Open(ctx, key+fs.FileExt)
		if err != nil {
			return err
		}
		for _, inf := range in {
			if inf.Kind(ctx) == wir.FileKindNone {
				continue
			}
			included, err := self.compileFile(ctx, inf, &sync.Map{}, req)
			if err != nil {
				return err
			}
			if included == nil {
				return exc.New(exc.Location{URI: inf.Path(ctx)}, exc.CodeInvalidInclude, fmt.Sprintf("could not compile include '%s'", include))
			}
			library[key] = included
			if err := self.loadIncludes(ctx, included, library, req); err != nil {
				return err
			}
		}
	}
	return nil
}

func (self *compiler) compileFile(ctx context.Context, file wir.File, loaded *sync.Map, req *wir.CompileRequest) (*wir.Program, error) {
	self.Semaphore.Lock()
	defer self.Semaphore.Unlock()
	if _, ok := loaded.Load(file.Path(ctx)); ok {
		return nil, nil
	}
	loaded.Store(file.Path(ctx), true)
	if file.Kind(ctx) != wir.FileKindWirelang {
		e := exc.New(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, "Unsupported file format")
		return nil, self.Reporter.Report(e)
	}

	lexer := NewLexerWir(self.Reporter)
	lexed, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	if req.DumpTokens {
		if err := dumpTokens(ctx, os.Stdout, lexed); err != nil {
			return nil, err
		}
		lexed, err = lexer.Lex(ctx, file)
		if err != nil {
			return nil, err
		}
	}

	parser := NewParserWir(self.Reporter)
	parsed, err := parser.PrepareParse(ctx, lexed)
	if err != nil {
		return nil, err
	}
	script := parsed.parse()
	if script == nil {
		return nil, nil
	}

	t := &transformer{
		reporter:  self.Reporter,
		uri:       file.Path(ctx),
		useFloats: req.UseFloats,
		evalPi:    req.EvalPi,
	}
	return t.transform(script), nil
}

func (self *compiler) targetURI(ctx context.Context, target string) string {
	// The compiler allows targets to be any valid URI or file path. When
	// the target is a file path or a file URI then we convert the paths to
	// an absolute form in order to work with the local implementation of
	// the FileSystem interface. All non-file URIs are left as-is with the
	// expectation that they will be handled by some other implementation.
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return target
}

type fileResult struct {
	offset  int
	program *wir.Program
	err     error
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
