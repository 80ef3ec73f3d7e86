package legaldoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ErrLowConfidence is returned when the classifier's confidence falls below
// the acceptance threshold. The run fails; there is no partial result.
var ErrLowConfidence = errors.New("classification confidence below threshold")

// ErrUnknownClass is returned for a document class outside the known set.
var ErrUnknownClass = errors.New("unknown document class")

// Defaults applied by New when the corresponding option is not set.
const (
	DefaultModel         = "gemini-2.0-flash-001"
	DefaultMinConfidence = 0.8

	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
	defaultConcurrency = 4
)

// Options configures a Pipeline.
type Options struct {
	Model         string
	MinConfidence float64
	Timeout       time.Duration // 0 → no per-document deadline
	MaxAttempts   uint
	RetryDelay    time.Duration
	Concurrency   int // bound for ProcessAll
	Logger        *slog.Logger
	Prompts       PromptProvider
	Invoker       Invoker      // override, primarily for tests
	Uploader      FileUploader // override, primarily for tests
}

func WithModel(name string) func(*Options) {
	return func(o *Options) { o.Model = name }
}

func WithMinConfidence(threshold float64) func(*Options) {
	return func(o *Options) { o.MinConfidence = threshold }
}

func WithTimeout(d time.Duration) func(*Options) {
	return func(o *Options) { o.Timeout = d }
}

func WithRetry(attempts uint, delay time.Duration) func(*Options) {
	return func(o *Options) {
		o.MaxAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithConcurrency(n int) func(*Options) {
	return func(o *Options) { o.Concurrency = n }
}

func WithLogger(log *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = log }
}

func WithPrompts(p PromptProvider) func(*Options) {
	return func(o *Options) { o.Prompts = p }
}

func WithInvoker(inv Invoker) func(*Options) {
	return func(o *Options) { o.Invoker = inv }
}

func WithUploader(u FileUploader) func(*Options) {
	return func(o *Options) { o.Uploader = u }
}

// Pipeline sequences upload → classify → confidence gate → extract →
// aggregate for one document at a time.
type Pipeline struct {
	uploader      FileUploader
	classifier    *Classifier
	extractor     *Extractor
	log           *slog.Logger
	minConfidence float64
	timeout       time.Duration
	concurrency   int
}

// New builds a Pipeline around a Gemini client. The client may be nil only
// when both the Invoker and Uploader are overridden.
func New(client *genai.Client, optFns ...func(*Options)) (*Pipeline, error) {
	opts := Options{
		Model:         DefaultModel,
		MinConfidence: DefaultMinConfidence,
		MaxAttempts:   defaultMaxAttempts,
		RetryDelay:    defaultRetryDelay,
		Concurrency:   defaultConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, fmt.Errorf("minimum confidence %v must be between 0.0 and 1.0", opts.MinConfidence)
	}

	prompts := opts.Prompts
	if prompts == nil {
		var err error
		if prompts, err = DefaultPrompts(); err != nil {
			return nil, fmt.Errorf("load prompts: %w", err)
		}
	}

	invoker := opts.Invoker
	if invoker == nil {
		if client == nil {
			return nil, fmt.Errorf("genai client is required without an invoker override")
		}
		invoker = &genaiInvoker{client: client, log: log, attempts: opts.MaxAttempts, delay: opts.RetryDelay}
	}

	uploader := opts.Uploader
	if uploader == nil {
		if client == nil {
			return nil, fmt.Errorf("genai client is required without an uploader override")
		}
		uploader = &Uploader{client: client, log: log, attempts: opts.MaxAttempts, delay: opts.RetryDelay}
	}

	return &Pipeline{
		uploader:      uploader,
		classifier:    NewClassifier(invoker, prompts, opts.Model, log),
		extractor:     NewExtractor(invoker, prompts, opts.Model, log),
		log:           log,
		minConfidence: opts.MinConfidence,
		timeout:       opts.Timeout,
		concurrency:   opts.Concurrency,
	}, nil
}

// Process runs one document end to end and returns the terminal record.
// A classification below the confidence threshold fails the whole run.
func (p *Pipeline) Process(ctx context.Context, path, displayName string) (*LegalDocument, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ref, err := p.uploader.Upload(ctx, path, displayName)
	if err != nil {
		return nil, err
	}

	dt, err := p.classifier.Classify(ctx, ref)
	if err != nil {
		return nil, err
	}
	if dt.Confidence < p.minConfidence {
		return nil, fmt.Errorf("%w: classified %s as %q with confidence %.2f (minimum %.2f)",
			ErrLowConfidence, ref.DisplayName, dt.Classification, dt.Confidence, p.minConfidence)
	}

	data, err := p.extractor.Extract(ctx, ref, dt.Classification)
	if err != nil {
		return nil, err
	}

	doc := &LegalDocument{
		DocumentID:       uuid.NewString(),
		FileURI:          ref.URI,
		DocumentType:     *dt,
		ExtractedData:    data,
		ProcessingErrors: []string{},
	}

	p.log.Info("document processed",
		"document_id", doc.DocumentID,
		"file_uri", doc.FileURI,
		"classification", dt.Classification,
		"confidence", dt.Confidence)
	return doc, nil
}

// BatchResult pairs one input path with its outcome.
type BatchResult struct {
	Path     string
	Document *LegalDocument
	Err      error
}

// ProcessAll runs several documents with bounded concurrency. Each document
// still flows through the pipeline strictly linearly; a failure on one file
// is recorded in its result and does not cancel the others.
func (p *Pipeline) ProcessAll(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, len(paths))

	r := NewLimitedRunner(ctx, p.concurrency)
	for i, path := range paths {
		i, path := i, path
		r.Go(func() error {
			doc, err := p.Process(ctx, path, "")
			results[i] = BatchResult{Path: path, Document: doc, Err: err}
			return nil // per-file errors stay in results
		})
	}
	_ = r.Wait()

	return results
}
