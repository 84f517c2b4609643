package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/inboxtools/sigscrub/internal/clean"
	"github.com/inboxtools/sigscrub/internal/config"
	"github.com/inboxtools/sigscrub/internal/detect"
	"github.com/inboxtools/sigscrub/internal/extract"
	"github.com/inboxtools/sigscrub/internal/mcp"
	"github.com/inboxtools/sigscrub/internal/tagcache"
	"github.com/inboxtools/sigscrub/internal/tagger"
)

const version = "0.2.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "clean":
		if err := runClean(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "classify":
		if err := runClassify(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("sigscrub %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// cliFlags holds the flags shared by clean and classify.
type cliFlags struct {
	paths      []string
	configPath string
	threshold  string
	taggerFlag string
	cachePath  string
	noCache    bool
	noTagger   bool
	asJSON     bool
}

// parseFlags scans args in "--flag value" form, collecting positional
// arguments as paths.
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--no-cache":
			f.noCache = true
			continue
		case "--no-tagger":
			f.noTagger = true
			continue
		case "--json":
			f.asJSON = true
			continue
		}

		switch arg {
		case "--config", "--threshold", "--tagger", "--cache":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s requires a value", arg)
			}
			i++
			v := args[i]
			switch arg {
			case "--config":
				f.configPath = v
			case "--threshold":
				f.threshold = v
			case "--tagger":
				f.taggerFlag = v
			case "--cache":
				f.cachePath = v
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			f.paths = append(f.paths, arg)
		}
	}

	return f, nil
}

// resolve layers config file, environment and CLI flags, then builds the
// detector options plus a cleanup function for the tag cache.
func resolve(f *cliFlags) (detect.Options, func(), error) {
	noop := func() {}

	resolved, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath:   f.configPath,
		CLIThreshold: f.threshold,
		CLITagger:    f.taggerFlag,
		CLICachePath: f.cachePath,
	})
	if err != nil {
		return detect.Options{}, noop, err
	}

	threshold, err := resolved.ThresholdValue()
	if err != nil {
		return detect.Options{}, noop, err
	}

	opts := detect.Options{Threshold: threshold}
	if f.noTagger {
		return opts, noop, nil
	}

	var tg tagger.Tagger = tagger.NewLexical()
	if resolved.Tagger.Value != "" {
		cfg, err := tagger.ParseTaggerFlag(resolved.Tagger.Value)
		if err != nil {
			return detect.Options{}, noop, err
		}
		client, err := tagger.NewClient(cfg)
		if err != nil {
			return detect.Options{}, noop, err
		}
		tg = client
	}

	cleanup := noop
	if !f.noCache && !resolved.CacheDisabled() {
		cache, err := tagcache.Open(resolved.CachePath.Value)
		if err != nil {
			// A broken cache is not worth failing the run over.
			fmt.Fprintf(os.Stderr, "Warning: tag cache disabled: %v\n", err)
		} else {
			tg = tagcache.WrapTagger(tg, cache)
			cleanup = func() { cache.Close() }
		}
	}

	opts.Tagger = tg
	return opts, cleanup, nil
}

func runClean(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.paths) == 0 {
		return fmt.Errorf("usage: sigscrub clean <path>... [--threshold 0.9] [--tagger spacy/en_core_web_sm] [--no-cache] [--no-tagger]")
	}

	opts, cleanup, err := resolve(f)
	if err != nil {
		return err
	}
	defer cleanup()

	cleaner := clean.New(opts, nil)
	ctx := context.Background()

	failed := 0
	for _, path := range f.paths {
		outPath, err := cleaner.ConvertFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Println(outPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(f.paths))
	}
	return nil
}

func runClassify(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.paths) != 1 {
		return fmt.Errorf("usage: sigscrub classify <path> [--json]")
	}

	opts, cleanup, err := resolve(f)
	if err != nil {
		return err
	}
	defer cleanup()

	body, err := extract.File(f.paths[0])
	if err != nil {
		return err
	}

	cleaner := clean.New(opts, nil)
	res, err := cleaner.Text(context.Background(), body)
	if err != nil {
		return err
	}

	if f.asJSON {
		data, err := json.MarshalIndent(res.Decisions, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	bodyLines := strings.Split(body, "\n")
	for i, d := range res.Decisions {
		mark := "keep"
		if !d.Keep {
			mark = "drop"
		}
		text := ""
		if i < len(bodyLines) {
			text = bodyLines[i]
		}
		fmt.Printf("%4d  %-4s  %-22s  %s\n", d.Index, mark, d.Reason, text)
	}
	return nil
}

func runConfig(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	resolved, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath:   f.configPath,
		CLIThreshold: f.threshold,
		CLITagger:    f.taggerFlag,
		CLICachePath: f.cachePath,
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	opts, cleanup, err := resolve(f)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := mcp.NewServer(mcp.ServerConfig{
		Cleaner: clean.New(opts, nil),
		Version: version,
	})

	return mcp.Serve(srv)
}

func printUsage() {
	fmt.Println(`sigscrub - remove signature blocks from plaintext emails

Usage:
  sigscrub clean <path>...     Write a *_clean copy of each email
  sigscrub classify <path>     Show the per-line keep/drop decisions
  sigscrub config              Print the resolved configuration
  sigscrub mcp                 Serve the cleaner over MCP (stdio)
  sigscrub version             Print version

Flags (clean, classify, mcp):
  --threshold <0..1>   POS confidence needed to drop an ambiguous short
                       line (default 0.9; lower drops more)
  --tagger <p/model>   Remote POS tagger, e.g. spacy/en_core_web_sm
                       (default: built-in lexical tagger)
  --no-tagger          Disable the POS signal entirely
  --cache <path>       Tag cache location (default ~/.sigscrub/tags.db)
  --no-cache           Disable the tag cache
  --config <path>      Config file (default ~/.sigscrub/config.yaml)

Environment:
  SIGSCRUB_THRESHOLD, SIGSCRUB_TAGGER, SIGSCRUB_CACHE, SIGSCRUB_NO_CACHE`)
}
