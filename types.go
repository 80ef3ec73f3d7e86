// Package legaldoc implements a linear pipeline for legal PDF filings:
// upload the file to the Gemini Files API, classify its document type with a
// schema-constrained model call, extract a type-specific structured payload,
// and aggregate everything into a single LegalDocument record.
package legaldoc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentClass identifies the category of a legal document.
type DocumentClass string

const (
	ClassJudgment  DocumentClass = "Judgment"
	ClassDismissal DocumentClass = "Dismissal"
	ClassAffidavit DocumentClass = "Affidavit"
	ClassOther     DocumentClass = "Other"
)

// DocumentClasses returns every class the classifier may produce, in the
// order they are presented in the classification prompt.
func DocumentClasses() []DocumentClass {
	return []DocumentClass{ClassJudgment, ClassDismissal, ClassAffidavit, ClassOther}
}

// Valid reports whether c is one of the known document classes.
func (c DocumentClass) Valid() bool {
	switch c {
	case ClassJudgment, ClassDismissal, ClassAffidavit, ClassOther:
		return true
	}
	return false
}

// classList renders the classes for prompt templates ("Judgment, Dismissal, ...").
func classList() string {
	classes := DocumentClasses()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// DocumentType is the classifier's verdict for a document.
type DocumentType struct {
	Classification DocumentClass `json:"classification"`
	Confidence     float64       `json:"confidence"`
}

// Party describes a person or entity referenced in a document.
type Party struct {
	Name     string  `json:"name"`
	Role     *string `json:"role,omitempty"`
	Address  *string `json:"address,omitempty"`
	Attorney *string `json:"attorney,omitempty"`
}

// ExtractedData is the tagged union over the per-class payloads. Exactly one
// concrete type exists per document class; Kind returns the class the payload
// belongs to so the union survives serialization.
type ExtractedData interface {
	Kind() DocumentClass
	Validate() error
}

// ExtractionError is the payload used when no extraction path exists for a
// document class. It is the only payload ever produced for "Other".
type ExtractionError struct {
	ErrorMessage string `json:"error_message"`
}

func (*ExtractionError) Kind() DocumentClass { return ClassOther }

func (e *ExtractionError) Validate() error {
	if e.ErrorMessage == "" {
		return fmt.Errorf("%w: extraction error requires a message", ErrInvalidRecord)
	}
	return nil
}

// LegalDocument is the terminal record of a pipeline run. It is produced
// once, never mutated, and serialized as the process output.
type LegalDocument struct {
	DocumentID       string        `json:"document_id"`
	FileURI          string        `json:"file_uri"`
	DocumentType     DocumentType  `json:"document_type"`
	ExtractedData    ExtractedData `json:"extracted_data"`
	RawText          string        `json:"raw_text"`
	ProcessingErrors []string      `json:"processing_errors"`
}

// kindKey is the discriminant field injected into the serialized union.
const kindKey = "kind"

// documentEnvelope is the wire shape of LegalDocument; extracted_data is kept
// raw so the union can be decoded after the discriminant is known.
type documentEnvelope struct {
	DocumentID       string          `json:"document_id"`
	FileURI          string          `json:"file_uri"`
	DocumentType     DocumentType    `json:"document_type"`
	ExtractedData    json.RawMessage `json:"extracted_data"`
	RawText          string          `json:"raw_text"`
	ProcessingErrors []string        `json:"processing_errors"`
}

// MarshalJSON serializes the record with a "kind" discriminant inside
// extracted_data so the union round-trips.
func (d LegalDocument) MarshalJSON() ([]byte, error) {
	env := documentEnvelope{
		DocumentID:       d.DocumentID,
		FileURI:          d.FileURI,
		DocumentType:     d.DocumentType,
		RawText:          d.RawText,
		ProcessingErrors: d.ProcessingErrors,
	}
	if env.ProcessingErrors == nil {
		env.ProcessingErrors = []string{}
	}

	if d.ExtractedData != nil {
		payload, err := json.Marshal(d.ExtractedData)
		if err != nil {
			return nil, fmt.Errorf("marshal extracted data: %w", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("marshal extracted data: %w", err)
		}
		kind, err := json.Marshal(d.ExtractedData.Kind())
		if err != nil {
			return nil, err
		}
		fields[kindKey] = kind
		if env.ExtractedData, err = json.Marshal(fields); err != nil {
			return nil, fmt.Errorf("marshal extracted data: %w", err)
		}
	}

	return json.Marshal(env)
}

// UnmarshalJSON restores the record, selecting the concrete payload type from
// the "kind" discriminant.
func (d *LegalDocument) UnmarshalJSON(b []byte) error {
	var env documentEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	d.DocumentID = env.DocumentID
	d.FileURI = env.FileURI
	d.DocumentType = env.DocumentType
	d.RawText = env.RawText
	d.ProcessingErrors = env.ProcessingErrors
	d.ExtractedData = nil

	if len(env.ExtractedData) == 0 || string(env.ExtractedData) == "null" {
		return nil
	}

	var probe struct {
		Kind DocumentClass `json:"kind"`
	}
	if err := json.Unmarshal(env.ExtractedData, &probe); err != nil {
		return fmt.Errorf("decode extracted data discriminant: %w", err)
	}

	data, err := decodeExtractedData(probe.Kind, env.ExtractedData)
	if err != nil {
		return err
	}
	d.ExtractedData = data
	return nil
}

// decodeExtractedData unmarshals raw JSON into the payload type for the given
// class. "Other" decodes into ExtractionError since no extraction path exists.
func decodeExtractedData(class DocumentClass, raw []byte) (ExtractedData, error) {
	switch class {
	case ClassJudgment:
		var v JudgmentData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode judgment data: %w", err)
		}
		return &v, nil
	case ClassDismissal:
		var v DismissalData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode dismissal data: %w", err)
		}
		return &v, nil
	case ClassAffidavit:
		var v AffidavitData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode affidavit data: %w", err)
		}
		return &v, nil
	case ClassOther:
		var v ExtractionError
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode extraction error: %w", err)
		}
		return &v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
}
