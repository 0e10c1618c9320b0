// Command blogctl drives the blog client from a terminal: it logs in, restores
// and inspects the persisted session, checks navigations against the route
// table and lists posts.
//
// Usage:
//
//	blogctl [flags] <command> [args]
//
// Commands: login <email>, logout, whoami, init, nav <path>, posts, metrics,
// security.
// Configuration is read from -config (YAML), then BLOG_* environment
// variables, then flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"

	blog "github.com/MrEthical07/blogClient"
	"github.com/MrEthical07/blogClient/api"
	"github.com/MrEthical07/blogClient/metrics/export/internaldefs"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type options struct {
	configPath  string
	baseURL     string
	storage     string
	storagePath string
	redisAddr   string
	logLevel    string
	logFormat   string
	events      bool
	password    string
	page        int
	keyword     string
	timeout     time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("blogctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.StringVar(&o.baseURL, "base-url", "", "API base url, e.g. http://localhost:8080/api")
	fs.StringVar(&o.storage, "storage", "", "session storage: bolt, file, redis, memredis or memory (default bolt)")
	fs.StringVar(&o.storagePath, "storage-path", "", "bolt or file storage path")
	fs.StringVar(&o.redisAddr, "redis-addr", "", "redis address for -storage=redis")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: default, text, json")
	fs.BoolVar(&o.events, "events", false, "print client events to stderr as JSON lines")
	fs.StringVar(&o.password, "password", "", "password for login; BLOG_PASSWORD when empty")
	fs.IntVar(&o.page, "page", 1, "page for posts")
	fs.StringVar(&o.keyword, "keyword", "", "keyword filter for posts")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "overall command timeout")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "usage: blogctl [flags] login <email> | logout | whoami | init | nav <path> | posts | metrics | security")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, cleanup, err := loadConfig(o)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "blogctl: %v\n", err)
		return exitUsage
	}
	defer cleanup()

	b := blog.New().
		WithConfig(cfg).
		WithLogger(blog.NewLogger(cfg.Log, stderr))
	if o.events {
		b.WithEventSink(blog.NewJSONWriterSink(stderr))
	}
	client, err := b.Build()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "blogctl: %v\n", err)
		return exitUsage
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			_, _ = fmt.Fprintf(stderr, "blogctl: closing: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err = dispatch(ctx, client, o, cmd, rest, stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "blogctl %s: %v\n", cmd, err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFail
	}
	return exitOK
}

var errUsage = errors.New("bad usage")

func dispatch(ctx context.Context, c *blog.Client, o options, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "login":
		if len(args) != 1 {
			return fmt.Errorf("%w: login <email>", errUsage)
		}
		password := o.password
		if password == "" {
			password = os.Getenv("BLOG_PASSWORD")
		}
		user, err := c.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		return printJSON(out, user)
	case "logout":
		c.Logout(ctx)
		_, err := fmt.Fprintln(out, "logged out")
		return err
	case "whoami":
		if !c.Initialize(ctx) {
			return errors.New("not logged in")
		}
		return printJSON(out, c.User())
	case "init":
		ok, err := c.Restore(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "logged_in=%t\n", ok)
		return err
	case "nav":
		if len(args) != 1 {
			return fmt.Errorf("%w: nav <path>", errUsage)
		}
		d := c.Navigate(ctx, args[0])
		_, err := fmt.Fprintf(out, "%s %s title=%q notice=%q\n", d.Outcome, d.Location, d.Title, d.Notice)
		return err
	case "posts":
		c.Initialize(ctx)
		page, err := c.API().Posts.List(ctx, api.PageQuery{Page: o.page, Size: 10, Keyword: o.keyword}, "")
		if err != nil {
			return err
		}
		for _, p := range page.Items {
			if _, err = fmt.Fprintf(out, "%6d  %s  [%s]\n", p.ID, p.Title, strings.Join(p.TagList(), ", ")); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(out, "page %d, %d posts total\n", o.page, page.Total)
		return err
	case "security":
		return printJSON(out, c.SecurityReport())
	case "metrics":
		c.Initialize(ctx)
		return printMetrics(out, c)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func loadConfig(o options) (cfg blog.Config, cleanup func(), err error) {
	cleanup = func() {}
	cfg = blog.DefaultConfig()
	if o.configPath != "" {
		if cfg, err = blog.LoadConfig(o.configPath); err != nil {
			return cfg, cleanup, err
		}
	} else {
		cfg.Storage.Kind = blog.StorageBolt
	}
	if err = blog.ApplyEnv(&cfg, nil); err != nil {
		return cfg, cleanup, err
	}

	if o.baseURL != "" {
		cfg.Gateway.BaseURL = o.baseURL
		cfg.Session.AssetBaseURL = strings.TrimSuffix(strings.TrimSuffix(o.baseURL, "/"), "/api")
	}
	if o.storagePath != "" {
		cfg.Storage.Path = o.storagePath
	}
	if o.redisAddr != "" {
		cfg.Storage.RedisAddr = o.redisAddr
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	switch o.storage {
	case "":
	case "memredis":
		mr, rerr := miniredis.Run()
		if rerr != nil {
			return cfg, cleanup, fmt.Errorf("starting miniredis: %w", rerr)
		}
		cfg.Storage.Kind = blog.StorageRedis
		cfg.Storage.RedisAddr = mr.Addr()
		cleanup = mr.Close
	default:
		cfg.Storage.Kind = blog.StorageKind(o.storage)
	}

	if cfg.Storage.Path == "" && (cfg.Storage.Kind == blog.StorageBolt || cfg.Storage.Kind == blog.StorageFile) {
		cfg.Storage.Path, err = defaultStoragePath(cfg.Storage.Kind)
	}
	return cfg, cleanup, err
}

func defaultStoragePath(kind blog.StorageKind) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	dir = filepath.Join(dir, "blogctl")
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	name := "session.json"
	if kind == blog.StorageBolt {
		name = "session.db"
	}
	return filepath.Join(dir, name), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMetrics(w io.Writer, c *blog.Client) error {
	snap := c.MetricsSnapshot()
	for _, d := range internaldefs.CounterDefs {
		if _, err := fmt.Fprintf(w, "%s %d\n", d.Name, snap.Counters[d.ID]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s %d\n", internaldefs.EventsDroppedName, c.EventsDropped())
	return err
}

