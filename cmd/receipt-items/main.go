package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-items/internal/itemize"
	"github.com/zombor/receipt-items/internal/receipt"
	"github.com/zombor/receipt-items/internal/scanning"
	"github.com/zombor/receipt-items/internal/scanning/tesseract"
	"github.com/zombor/receipt-items/internal/upload"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-items")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "receipt-items.db", "Database file path")
		storagePath    = fs.StringLong("storage", "./uploads", "Directory for uploaded receipt images")
		scannerType    = fs.StringLong("scanner", "none", "OCR engine for image uploads: none, tesseract, gemini or ollama")
		tesseractLang  = fs.StringLong("tesseract-lang", "kor+eng", "Tesseract languages, joined with '+'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		uploadURL      = fs.StringLong("upload-url", "", "Endpoint that receives item lists as JSON (optional)")
		uploadTimeout  = fs.DurationLong("upload-timeout", upload.DefaultTimeout, "Timeout for a single upload")
		profileName    = fs.StringLong("profile", itemize.ProfileDefault.Name, "Output profile: default or legacy")
		groupThreshold = fs.Float64Long("group-threshold", itemize.DefaultGroupThreshold, "Largest vertical distance between lines of one row")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		documentPath   = fs.StringLong("document", "", "Itemize one OCR JSON document ('-' for stdin), print the items and exit")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat      = fs.StringLong("log-format", "text", "Log format: text or json")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_ITEMS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	profile, err := itemize.ProfileByName(*profileName)
	if err != nil {
		slog.Error("Invalid profile", "error", err)
		os.Exit(1)
	}
	pipeline := itemize.New(itemize.Config{
		Profile:        profile,
		GroupThreshold: *groupThreshold,
	})

	var uploader upload.Uploader
	if *uploadURL != "" {
		client, err := upload.NewClient(*uploadURL, *uploadTimeout)
		if err != nil {
			slog.Error("Failed to initialize upload client", "error", err)
			os.Exit(1)
		}
		uploader = client
		slog.Info("Upload enabled", "endpoint", *uploadURL)
	}

	// One-shot mode
	if *documentPath != "" {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := runDocument(ctx, *documentPath, pipeline, uploader, os.Stdin, os.Stdout); err != nil {
			slog.Error("Failed to itemize document", "document", *documentPath, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var scanner scanning.Scanner
	switch *scannerType {
	case "none":
		slog.Info("No scanner configured; image uploads are disabled")
	case "tesseract":
		langs := strings.Split(*tesseractLang, "+")
		slog.Info("Initializing Tesseract scanner...", "languages", langs)
		scanner, err = tesseract.NewEngine(langs...)
		if err != nil {
			slog.Error("Failed to initialize Tesseract", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "none, tesseract, gemini or ollama")
		os.Exit(1)
	}
	if scanner != nil {
		defer scanner.Close()
	}

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := receipt.NewService(db, store, pipeline, scanner, uploader)

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"profile", profile.Name,
		"scanner", *scannerType,
		"version", version,
	)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// newLogger builds the process logger from the log flags
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// runDocument itemizes one OCR document, writes the items to out as JSON and,
// when an uploader is configured, sends them once
func runDocument(ctx context.Context, path string, pipeline *itemize.Pipeline, uploader upload.Uploader, stdin io.Reader, out io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	doc, err := scanning.DecodeDocument(data)
	if err != nil {
		return err
	}

	start := time.Now()
	result := pipeline.Run(doc.Lines())
	items := result.Items
	if items == nil {
		items = []itemize.LineItem{}
	}
	slog.Debug("Document itemized",
		"lines", doc.LineCount(),
		"groups", len(result.Groups),
		"tokens", len(result.Tokens),
		"items", len(items),
		"elapsed", time.Since(start),
	)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}

	if uploader != nil {
		if err := uploader.Send(ctx, items); err != nil {
			return err
		}
	}
	return nil
}
