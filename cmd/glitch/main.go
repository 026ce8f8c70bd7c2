// Glitch CLI - applies pixel-expression passes to images
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/glitch/cache"
	"github.com/chazu/glitch/config"
	"github.com/chazu/glitch/imageio"
	"github.com/chazu/glitch/pkg/expr"
	"github.com/chazu/glitch/render"
)

// multiFlag collects a repeatable string flag in order.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var expressions multiFlag
	flag.Var(&expressions, "e", "Expression to apply (repeatable; passes run in order)")
	exprFile := flag.String("f", "", "File with one expression per line ('#' lines and blanks skipped)")
	output := flag.String("o", "", "Output file (defaults to output.<ext> next to the input)")
	seed := flag.Int64("s", 0, "Random seed (defaults to the current time)")
	workers := flag.Int("workers", 0, "Concurrent frame workers (0 = one per CPU)")
	noState := flag.Bool("no-state", false, "Disable per-pixel memoization of stateful variables")
	noCache := flag.Bool("no-cache", false, "Skip the compiled-expression cache")
	openOut := flag.Bool("open", false, "Open the output file when done")
	verbose := flag.Bool("v", false, "Verbose output (disassembles compiled expressions)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glitch [options] <input>\n\n")
		fmt.Fprintf(os.Stderr, "Applies one or more pixel expressions to an image or GIF animation.\n")
		fmt.Fprintf(os.Stderr, "The input may be a local file or an http(s) URL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glitch -e 'c*2' in.png              # Double every channel (wrapping)\n")
		fmt.Fprintf(os.Stderr, "  glitch -e 's+c/2' -e 'i' in.gif     # Two passes over every frame\n")
		fmt.Fprintf(os.Stderr, "  glitch -f looks.txt -o out.png in.jpg\n")
		fmt.Fprintf(os.Stderr, "  glitch -e 'r5?c' -s 42 in.png       # Reproducible run\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config: %v\n", err)
		cfg = config.Default()
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}
	if cfg.NoCache {
		*noCache = true
	}

	sources, err := collectExpressions(expressions, *exprFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no expressions given (use -e or -f)\n")
		os.Exit(1)
	}

	programs, err := compilePrograms(sources, cfg, *noCache, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		for i, prog := range programs {
			fmt.Printf("Pass %d: %s\n", i+1, sources[i])
			fmt.Println(expr.Disassemble(prog))
		}
	}

	// Default the seed to wall time unless -s was given: a zero seed
	// is a legitimate choice, so presence matters, not value.
	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "s" {
			seedSet = true
		}
	})
	if !seedSet {
		*seed = time.Now().UnixNano()
	}

	ctx := context.Background()

	data, err := imageio.Read(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, err := imageio.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Input: %s %dx%d, %d frame(s), seed %d\n",
			src.Format, src.Width, src.Height, len(src.Frames), *seed)
	}

	// Each pass only visits its non-zero bounds rectangle, so the true
	// pixel count is only known as passes start. The bar's max grows by
	// each pass's total on that pass's first report.
	bar := progressbar.NewOptions(0,
		progressbar.OptionSetDescription("glitching"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	var barMu sync.Mutex

	frames, err := render.Frames(ctx, src.Frames, programs, render.Options{
		Seed:         *seed,
		SeedPerFrame: cfg.SeedPerFrame,
		NoMemo:       *noState,
		Workers:      *workers,
		Progress: func(frame, done, total int) {
			barMu.Lock()
			if done == 1 {
				bar.ChangeMax(bar.GetMax() + total)
			}
			barMu.Unlock()
			_ = bar.Add(1)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
	_ = bar.Finish()

	src.Frames = frames

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(localName(input)), src.Format.OutputName())
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := imageio.Encode(f, src); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (seed %d)\n", outPath, *seed)

	if *openOut {
		if err := openFile(outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open %s: %v\n", outPath, err)
		}
	}
}

// collectExpressions merges -e flags with the lines of an -f file. The
// flag expressions come first; file lines append after them, so a file
// acts as a suffix of extra passes.
func collectExpressions(flags []string, file string) ([]string, error) {
	sources := append([]string(nil), flags...)

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("reading expressions: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			sources = append(sources, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading expressions: %w", err)
		}
	}

	return sources, nil
}

// compilePrograms compiles the expression list, going through the
// on-disk cache unless disabled. Cache failures fall back to a fresh
// compile; they never fail the run.
func compilePrograms(sources []string, cfg config.Config, noCache, verbose bool) ([][]expr.Instruction, error) {
	if noCache {
		return expr.CompileAll(sources)
	}

	var path string
	if cfg.CacheDir != "" {
		path = filepath.Join(cfg.CacheDir, "cache.db")
	} else {
		var err error
		path, err = cache.DefaultPath()
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: expression cache unavailable: %v\n", err)
			}
			return expr.CompileAll(sources)
		}
	}

	store, err := cache.Open(path)
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: expression cache unavailable: %v\n", err)
		}
		return expr.CompileAll(sources)
	}
	defer store.Close()

	key := cache.Key(sources)
	programs, err := store.Load(key)
	if err == nil {
		if verbose {
			fmt.Printf("Cache hit (%s)\n", key[:12])
		}
		return programs, nil
	}
	if !errors.Is(err, cache.ErrMiss) && verbose {
		fmt.Fprintf(os.Stderr, "Warning: expression cache read: %v\n", err)
	}

	programs, err = expr.CompileAll(sources)
	if err != nil {
		return nil, err
	}
	if err := store.Save(key, sources, programs); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "Warning: expression cache write: %v\n", err)
	}
	return programs, nil
}

// localName maps a remote URL to a local-looking name so the default
// output lands in the working directory.
func localName(input string) string {
	if !imageio.IsRemote(input) {
		return input
	}
	base := filepath.Base(input)
	if base == "." || base == "/" {
		return "output"
	}
	return base
}

// openFile opens a file with the platform's default viewer.
func openFile(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
