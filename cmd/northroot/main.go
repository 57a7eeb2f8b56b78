// Command northroot is the command-line surface over the trust kernel:
// canonicalize JSON, compute event identities, append to journals, list
// their contents, and verify them offline.
//
// Exit codes: 0 success, 1 verification failure, 2 I/O or format error,
// 64 usage error.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"cosmossdk.io/log"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/config"
	"github.com/Northroot-Labs/northroot/event"
	"github.com/Northroot-Labs/northroot/journal"
	"github.com/Northroot-Labs/northroot/verify"
)

const (
	exitOK           = 0
	exitVerifyFailed = 1
	exitIOError      = 2
	exitUsage        = 64
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.NewLogger(stderr)

	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "canonicalize":
		return cmdCanonicalize(stdin, stdout, logger)
	case "event-id":
		return cmdEventID(stdin, stdout, logger)
	case "append":
		return cmdAppend(args[1:], stdin, stderr, logger)
	case "list":
		return cmdList(args[1:], stdout, stderr, logger)
	case "verify":
		return cmdVerify(args[1:], stdout, stderr, logger)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: northroot <command> [flags]

commands:
  canonicalize          canonicalize JSON from stdin to stdout
  event-id              compute the identity of the event on stdin
  append <path>         append the event on stdin to a journal
  list <path>           print each event's id and type
  verify <path>         recompute and check every event identity
`)
}

func cmdCanonicalize(stdin io.Reader, stdout io.Writer, logger log.Logger) int {
	input, err := io.ReadAll(stdin)
	if err != nil {
		logger.Error("read stdin", "err", err)
		return exitIOError
	}
	res, err := canonical.New(canonical.V1()).CanonicalizeBytes(input)
	if err != nil {
		logger.Error("canonicalize", "err", err)
		return exitIOError
	}
	if _, err := stdout.Write(res.Bytes); err != nil {
		logger.Error("write stdout", "err", err)
		return exitIOError
	}
	return exitOK
}

func cmdEventID(stdin io.Reader, stdout io.Writer, logger log.Logger) int {
	input, err := io.ReadAll(stdin)
	if err != nil {
		logger.Error("read stdin", "err", err)
		return exitIOError
	}
	digest, err := event.NewV1Identifier().ComputeBytes(input)
	if err != nil {
		logger.Error("compute event id", "err", err)
		return exitIOError
	}
	out, err := json.Marshal(digest)
	if err != nil {
		logger.Error("encode digest", "err", err)
		return exitIOError
	}
	fmt.Fprintln(stdout, string(out))
	return exitOK
}

func cmdAppend(args []string, stdin io.Reader, stderr io.Writer, logger log.Logger) int {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file")
	sync := fs.Bool("sync", false, "fsync after the append")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, code := loadConfig(*configPath, logger)
	if code != exitOK {
		return code
	}
	path, code := journalPath(fs.Args(), cfg, stderr)
	if code != exitOK {
		return code
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		logger.Error("read stdin", "err", err)
		return exitIOError
	}

	ident := event.NewV1Identifier()
	v, err := canonical.Parse(input)
	if err != nil {
		logger.Error("parse event", "err", err)
		return exitIOError
	}
	digest, err := ident.Compute(v)
	if err != nil {
		logger.Error("compute event id", "err", err)
		return exitIOError
	}
	sealed, err := event.Inject(v, digest)
	if err != nil {
		logger.Error("inject event id", "err", err)
		return exitIOError
	}
	res, err := canonical.Canonicalize(&sealed, canonical.V1())
	if err != nil {
		logger.Error("canonicalize event", "err", err)
		return exitIOError
	}

	opts := journal.DefaultWriterOptions()
	opts.SyncAfterAppend = *sync || cfg.SyncAfterAppend
	w, err := journal.OpenWriter(path, opts)
	if err != nil {
		logger.Error("open journal", "err", err)
		return exitIOError
	}
	if err := w.AppendEvent(res.Bytes); err != nil {
		logger.Error("append event", "err", err)
		return exitIOError
	}
	if err := w.Finish(); err != nil {
		logger.Error("finish journal", "err", err)
		return exitIOError
	}
	logger.Info("event appended", "journal", path, "event_id", digest.B64)
	return exitOK
}

func cmdList(args []string, stdout, stderr io.Writer, logger log.Logger) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file")
	mode := fs.String("mode", "", "reader mode: strict or permissive")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, code := loadConfig(*configPath, logger)
	if code != exitOK {
		return code
	}
	path, code := journalPath(fs.Args(), cfg, stderr)
	if code != exitOK {
		return code
	}
	readerMode, code := resolveMode(*mode, cfg, stderr)
	if code != exitOK {
		return code
	}

	r, err := journal.OpenReader(path, readerMode)
	if err != nil {
		logger.Error("open journal", "err", err)
		return exitIOError
	}
	defer r.Close()

	for {
		v, err := r.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error("read journal", "err", err)
			return exitIOError
		}

		id := "-"
		if carried, ok := v.Lookup("event_id"); ok {
			if b64, ok := carried.Lookup("b64"); ok {
				id = b64.Str
			}
		}
		eventType := "-"
		if tv, ok := v.Lookup("event_type"); ok {
			eventType = tv.Str
		}
		fmt.Fprintf(stdout, "%s\t%s\n", id, eventType)
	}
	if r.TruncationSeen() {
		logger.Warn("journal ends inside a frame; trailing events ignored", "journal", path)
	}
	return exitOK
}

func cmdVerify(args []string, stdout, stderr io.Writer, logger log.Logger) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file")
	mode := fs.String("mode", "", "reader mode: strict or permissive")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, code := loadConfig(*configPath, logger)
	if code != exitOK {
		return code
	}
	path, code := journalPath(fs.Args(), cfg, stderr)
	if code != exitOK {
		return code
	}
	readerMode, code := resolveMode(*mode, cfg, stderr)
	if code != exitOK {
		return code
	}

	report, err := verify.Journal(path, readerMode)
	if err != nil {
		logger.Error("verify journal", "err", err)
		return exitIOError
	}

	fmt.Fprintf(stdout, "events read: %d\n", report.TotalEvents)
	fmt.Fprintf(stdout, "ok: %d\n", report.OkCount)
	fmt.Fprintf(stdout, "invalid: %d\n", report.InvalidCount)
	if report.TruncationSeen {
		fmt.Fprintln(stdout, "trailing truncation forgiven")
	}
	if !report.Ok() {
		fmt.Fprintf(stdout, "first failing offset: %d\n", report.FirstFailingOffset)
		logger.Error("verification failed", "first_failure", report.FirstFailure)
		return exitVerifyFailed
	}
	return exitOK
}

func loadConfig(path string, logger log.Logger) (*config.Config, int) {
	if path == "" {
		return config.Default(), exitOK
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("load config", "err", err)
		return nil, exitIOError
	}
	return cfg, exitOK
}

// journalPath resolves the journal argument, falling back to the
// configured default.
func journalPath(args []string, cfg *config.Config, stderr io.Writer) (string, int) {
	switch len(args) {
	case 0:
		if cfg.Journal == "" {
			fmt.Fprintln(stderr, "missing journal path")
			return "", exitUsage
		}
		return cfg.Journal, exitOK
	case 1:
		return args[0], exitOK
	default:
		fmt.Fprintln(stderr, "too many arguments")
		return "", exitUsage
	}
}

func resolveMode(flagValue string, cfg *config.Config, stderr io.Writer) (journal.Mode, int) {
	switch flagValue {
	case "":
		return cfg.ReaderMode(), exitOK
	case config.ModeStrict:
		return journal.Strict, exitOK
	case config.ModePermissive:
		return journal.Permissive, exitOK
	default:
		fmt.Fprintf(stderr, "unknown mode %q\n", flagValue)
		return journal.Strict, exitUsage
	}
}
