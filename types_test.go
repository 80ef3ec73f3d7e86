package legaldoc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleJudgment() *JudgmentData {
	rate := NewAmount("0.05")
	fees := NewAmount("1500.00")
	return &JudgmentData{
		CaseNumber:         "ABC-123-2023",
		FiledDate:          NewDate(2023, time.May, 1),
		County:             "King",
		Court:              strPtr("Superior Court"),
		PlaintiffCreditor:  Party{Name: "Acme Credit LLC", Role: strPtr("Creditor")},
		DefendantsDebtors:  []Party{{Name: "John Doe", Role: strPtr("Debtor"), Attorney: strPtr("Jane Smith")}},
		JudgmentAmount:     NewAmount("12500.00"),
		InterestRate:       &rate,
		Judge:              strPtr("Hon. R. Alvarez"),
		SatisfactionStatus: SatisfactionStatus{Known: true, Satisfied: false},
		AttorneyFees:       &fees,
	}
}

func sampleDocument(data ExtractedData, class DocumentClass, confidence float64) LegalDocument {
	return LegalDocument{
		DocumentID:       "2b1f8c1e-9a74-4a7e-9a6e-0c6a1c9d4e21",
		FileURI:          "https://generativelanguage.googleapis.com/v1beta/files/abc123",
		DocumentType:     DocumentType{Classification: class, Confidence: confidence},
		ExtractedData:    data,
		ProcessingErrors: []string{},
	}
}

func TestDocumentClassValid(t *testing.T) {
	for _, c := range DocumentClasses() {
		assert.True(t, c.Valid(), "class %q", c)
	}
	assert.False(t, DocumentClass("Subpoena").Valid())
	assert.False(t, DocumentClass("").Valid())
}

func TestLegalDocumentRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		class DocumentClass
		data  ExtractedData
	}{
		{"judgment", ClassJudgment, sampleJudgment()},
		{"dismissal", ClassDismissal, &DismissalData{
			CaseNumber:    "CIV-2023-0042",
			FiledDate:     NewDate(2023, time.March, 15),
			County:        "Multnomah",
			Plaintiff:     Party{Name: "Jane Roe"},
			Defendants:    []Party{{Name: "Initech Inc."}},
			DismissalType: DismissalWithoutPrejudice,
			Reason:        strPtr("Settled out of court"),
		}},
		{"affidavit", ClassAffidavit, &AffidavitData{
			Affiant:         Party{Name: "Sam Carter", Address: strPtr("12 Oak St")},
			DateOfAffidavit: NewDate(2023, time.July, 4),
			ContentSummary:  "Affiant attests to residency at the stated address since 2019.",
			NotaryPublic:    strPtr("P. Nguyen"),
			NotaryState:     strPtr("WA"),
		}},
		{"other", ClassOther, &ExtractionError{
			ErrorMessage: `extraction for document type "Other" is not implemented`,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := sampleDocument(tc.data, tc.class, 0.93)

			first, err := json.Marshal(doc)
			require.NoError(t, err)

			var decoded LegalDocument
			require.NoError(t, json.Unmarshal(first, &decoded))

			assert.Equal(t, doc.DocumentID, decoded.DocumentID)
			assert.Equal(t, doc.FileURI, decoded.FileURI)
			assert.Equal(t, doc.DocumentType, decoded.DocumentType)
			assert.Equal(t, doc.RawText, decoded.RawText)
			assert.Equal(t, doc.ProcessingErrors, decoded.ProcessingErrors)
			require.NotNil(t, decoded.ExtractedData)
			assert.Equal(t, tc.class, decoded.ExtractedData.Kind())

			// Serializing the decoded record must reproduce identical values.
			second, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}

func TestLegalDocumentMarshalInjectsKind(t *testing.T) {
	doc := sampleDocument(sampleJudgment(), ClassJudgment, 0.91)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(m["extracted_data"], &payload))
	assert.Equal(t, string(ClassJudgment), payload["kind"])
	assert.Equal(t, "ABC-123-2023", payload["case_number"])
}

func TestLegalDocumentUnmarshalNilPayload(t *testing.T) {
	raw := `{
		"document_id": "doc-1",
		"file_uri": "files/abc",
		"document_type": {"classification": "Other", "confidence": 0.9},
		"extracted_data": null,
		"raw_text": "",
		"processing_errors": []
	}`

	var doc LegalDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Nil(t, doc.ExtractedData)
}

func TestLegalDocumentUnmarshalUnknownKind(t *testing.T) {
	raw := `{
		"document_id": "doc-1",
		"file_uri": "files/abc",
		"document_type": {"classification": "Judgment", "confidence": 0.9},
		"extracted_data": {"kind": "Subpoena"},
		"raw_text": "",
		"processing_errors": []
	}`

	var doc LegalDocument
	err := json.Unmarshal([]byte(raw), &doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestDecodeExtractedDataMatchesClass(t *testing.T) {
	payloads := map[DocumentClass]string{
		ClassJudgment: `{"case_number":"XYZ-987-2022","filed_date":"2022-01-10","county":"Clark",
			"plaintiff_creditor":{"name":"A"},"defendants_debtors":[{"name":"B"}],"judgment_amount":"100"}`,
		ClassDismissal: `{"case_number":"C-1","filed_date":"2022-01-10","county":"Clark",
			"plaintiff":{"name":"A"},"defendants":[{"name":"B"}],"dismissal_type":"voluntary"}`,
		ClassAffidavit: `{"affiant":{"name":"A"},"date_of_affidavit":"2022-01-10","content_summary":"s"}`,
		ClassOther:     `{"error_message":"nope"}`,
	}

	for class, raw := range payloads {
		data, err := decodeExtractedData(class, []byte(raw))
		require.NoError(t, err, "class %q", class)
		assert.Equal(t, class, data.Kind())
	}
}
