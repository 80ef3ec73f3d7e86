package legaldoc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// stubInvoker replays canned responses in call order.
type stubInvoker struct {
	mu        sync.Mutex
	responses []stubResponse
	calls     int
	prompts   []string
	schemas   []*genai.Schema
}

type stubResponse struct {
	raw []byte
	err error
}

func (s *stubInvoker) Generate(ctx context.Context, model, prompt string, ref *FileRef, schema *genai.Schema) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.schemas = append(s.schemas, schema)
	if s.calls >= len(s.responses) {
		return nil, errors.New("stub invoker: no response configured")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp.raw, resp.err
}

// fakeUploader returns a fixed reference without touching the network.
type fakeUploader struct {
	ref *FileRef
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, path, displayName string) (*FileRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	ref := *f.ref
	if displayName == "" {
		displayName = path
	}
	ref.DisplayName = displayName
	return &ref, nil
}

// keyedInvoker replays responses per display name, so concurrent batch runs
// stay deterministic regardless of scheduling order.
type keyedInvoker struct {
	mu        sync.Mutex
	responses map[string][]stubResponse
}

func (k *keyedInvoker) Generate(ctx context.Context, model, prompt string, ref *FileRef, schema *genai.Schema) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	queue := k.responses[ref.DisplayName]
	if len(queue) == 0 {
		return nil, errors.New("keyed invoker: no response configured for " + ref.DisplayName)
	}
	resp := queue[0]
	k.responses[ref.DisplayName] = queue[1:]
	return resp.raw, resp.err
}

func testFileRef() *FileRef {
	return &FileRef{
		URI:         "https://generativelanguage.googleapis.com/v1beta/files/test123",
		Name:        "files/test123",
		MIMEType:    pdfMIMEType,
		DisplayName: "Test Filing",
		SizeBytes:   2048,
		Checksum:    "deadbeef",
		Pages:       3,
	}
}

const (
	classifyJudgmentJSON = `{"classification":"Judgment","confidence":0.95}`

	judgmentPayloadJSON = `{
		"case_number": "ABC-123-2023",
		"filed_date": "2023-05-01",
		"county": "King",
		"court": "Superior Court",
		"plaintiff_creditor": {"name": "Acme Credit LLC", "role": "Creditor"},
		"defendants_debtors": [{"name": "John Doe", "role": "Debtor"}],
		"judgment_amount": "12,500.00",
		"interest_rate": "0.05",
		"judge": "Hon. R. Alvarez",
		"satisfaction_status": "paid in full",
		"attorney_fees": "1,500.00"
	}`
)

func newTestPipeline(t *testing.T, inv Invoker, up FileUploader, optFns ...func(*Options)) *Pipeline {
	t.Helper()
	opts := append([]func(*Options){WithInvoker(inv), WithUploader(up)}, optFns...)
	p, err := New(nil, opts...)
	require.NoError(t, err)
	return p
}

func TestProcessJudgmentHappyPath(t *testing.T) {
	inv := &stubInvoker{responses: []stubResponse{
		{raw: []byte(classifyJudgmentJSON)},
		{raw: []byte(judgmentPayloadJSON)},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()})

	doc, err := p.Process(context.Background(), "/tmp/judgment.pdf", "")
	require.NoError(t, err)

	// Invariants of a successful run.
	assert.GreaterOrEqual(t, doc.DocumentType.Confidence, DefaultMinConfidence)
	assert.Equal(t, doc.DocumentType.Classification, doc.ExtractedData.Kind())
	assert.Empty(t, doc.RawText)
	assert.Empty(t, doc.ProcessingErrors)
	assert.NotEmpty(t, doc.DocumentID)
	assert.Equal(t, testFileRef().URI, doc.FileURI)

	judgment, ok := doc.ExtractedData.(*JudgmentData)
	require.True(t, ok)
	assert.Equal(t, "ABC-123-2023", judgment.CaseNumber)
	assert.True(t, judgment.JudgmentAmount.Equal(NewAmount("12500.00").Decimal))
	assert.Equal(t, SatisfactionStatus{Known: true, Satisfied: true}, judgment.SatisfactionStatus)

	// One classification call plus one extraction call, both schema-constrained.
	assert.Equal(t, 2, inv.calls)
	for _, schema := range inv.schemas {
		assert.NotNil(t, schema)
	}
}

func TestProcessLowConfidenceFails(t *testing.T) {
	inv := &stubInvoker{responses: []stubResponse{
		{raw: []byte(`{"classification":"Judgment","confidence":0.55}`)},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()})

	doc, err := p.Process(context.Background(), "/tmp/judgment.pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLowConfidence)
	assert.Nil(t, doc)
	// No extraction call after a failed gate.
	assert.Equal(t, 1, inv.calls)
}

func TestProcessCustomThreshold(t *testing.T) {
	inv := &stubInvoker{responses: []stubResponse{
		{raw: []byte(`{"classification":"Judgment","confidence":0.55}`)},
		{raw: []byte(judgmentPayloadJSON)},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()}, WithMinConfidence(0.5))

	doc, err := p.Process(context.Background(), "/tmp/judgment.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, 0.55, doc.DocumentType.Confidence)
}

func TestProcessOtherHasNoExtractionPath(t *testing.T) {
	inv := &stubInvoker{responses: []stubResponse{
		{raw: []byte(`{"classification":"Other","confidence":0.9}`)},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()})

	doc, err := p.Process(context.Background(), "/tmp/mystery.pdf", "")
	require.NoError(t, err)

	payload, ok := doc.ExtractedData.(*ExtractionError)
	require.True(t, ok)
	assert.Contains(t, payload.ErrorMessage, "not implemented")
	// Only the classification call: no model call is made for "Other".
	assert.Equal(t, 1, inv.calls)
}

func TestProcessUploadFailurePropagates(t *testing.T) {
	uploadErr := errors.New("quota exceeded")
	p := newTestPipeline(t, &stubInvoker{}, &fakeUploader{err: uploadErr})

	_, err := p.Process(context.Background(), "/tmp/judgment.pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, uploadErr)
}

func TestProcessRejectsNonconformingExtraction(t *testing.T) {
	inv := &stubInvoker{responses: []stubResponse{
		{raw: []byte(classifyJudgmentJSON)},
		// Missing required fields and malformed case number.
		{raw: []byte(`{"case_number":"bogus"}`)},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()})

	_, err := p.Process(context.Background(), "/tmp/judgment.pdf", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestProcessAllRecordsPerFileOutcomes(t *testing.T) {
	inv := &keyedInvoker{responses: map[string][]stubResponse{
		"/tmp/a.pdf": {
			{raw: []byte(classifyJudgmentJSON)},
			{raw: []byte(judgmentPayloadJSON)},
		},
		"/tmp/b.pdf": {
			{raw: []byte(`{"classification":"Affidavit","confidence":0.4}`)},
		},
	}}
	p := newTestPipeline(t, inv, &fakeUploader{ref: testFileRef()}, WithConcurrency(2))

	results := p.ProcessAll(context.Background(), []string{"/tmp/a.pdf", "/tmp/b.pdf"})
	require.Len(t, results, 2)

	assert.Equal(t, "/tmp/a.pdf", results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Equal(t, ClassJudgment, results[0].Document.DocumentType.Classification)

	assert.Equal(t, "/tmp/b.pdf", results[1].Path)
	require.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, ErrLowConfidence)
	assert.Nil(t, results[1].Document)
}

func TestNewRejectsBadThreshold(t *testing.T) {
	_, err := New(nil, WithInvoker(&stubInvoker{}), WithUploader(&fakeUploader{ref: testFileRef()}), WithMinConfidence(1.5))
	require.Error(t, err)
}

func TestNewRequiresClientWithoutOverrides(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
