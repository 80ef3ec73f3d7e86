package legaldoc

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/genai"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaName maps a document class to its embedded JSON Schema file. The
// classifier's verdict schema lives under the reserved name "document_type".
func schemaName(class DocumentClass) string {
	return strings.ToLower(string(class))
}

const classificationSchemaName = "document_type"

// compileSchema loads and compiles one embedded schema by name.
func compileSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name+".json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// validateAgainstSchema checks raw model output against the named embedded
// schema before it is trusted for decoding.
func validateAgainstSchema(name string, raw []byte) error {
	schema, err := compileSchema(name)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode model output for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("model output does not match %s schema: %w", name, err)
	}
	return nil
}

// The genai.Schema values below constrain the model's structured output on
// the request side. The embedded JSON Schemas above re-check the response
// locally; the two are kept in sync by schema_test.go.

func partyResponseSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties: map[string]*genai.Schema{
			"name":     {Type: genai.TypeString, Description: "Full name of the party (person or entity)."},
			"role":     {Type: genai.TypeString, Description: "Role of the party, e.g. 'Plaintiff', 'Defendant', 'Creditor', 'Debtor'."},
			"address":  {Type: genai.TypeString, Description: "Address of the party, if available."},
			"attorney": {Type: genai.TypeString, Description: "Name of the attorney representing the party, if available."},
		},
		Required: []string{"name"},
	}
}

func classificationResponseSchema() *genai.Schema {
	classes := DocumentClasses()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = string(c)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"classification": {
				Type:        genai.TypeString,
				Enum:        names,
				Description: "The identified type of legal document.",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Confidence score for the classification, between 0.0 and 1.0.",
			},
		},
		Required: []string{"classification", "confidence"},
	}
}

func judgmentResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"case_number": {
				Type:        genai.TypeString,
				Description: "The unique case number assigned to the judgment. Must be in the format ABC-123-2023.",
			},
			"filed_date": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "The date the judgment was filed with the court, as YYYY-MM-DD.",
			},
			"county": {
				Type:        genai.TypeString,
				Description: "The county where the judgment was filed.",
			},
			"court": {
				Type:        genai.TypeString,
				Description: "The specific court (e.g. 'Superior Court', 'District Court') where the judgment was filed.",
			},
			"plaintiff_creditor": partyResponseSchema("The party in whose favor the judgment is entered (plaintiff/creditor)."),
			"defendants_debtors": {
				Type:        genai.TypeArray,
				Items:       partyResponseSchema("A party against whom the judgment is entered (defendant/debtor)."),
				Description: "The party or parties against whom the judgment is entered.",
			},
			"judgment_amount": {
				Type:        genai.TypeString,
				Description: "The monetary amount awarded in the judgment, as a decimal. Look for phrases like 'the sum of' or 'judgment is entered for'. Exclude any commas.",
			},
			"interest_rate": {
				Type:        genai.TypeString,
				Description: "The annual interest rate applied to the judgment, if specified. Express as a decimal (e.g. 0.05 for 5%).",
			},
			"judge": {
				Type:        genai.TypeString,
				Description: "The name of the judge who issued the judgment.",
			},
			"satisfaction_status": {
				Type:        genai.TypeBoolean,
				Description: "Whether the judgment has been satisfied (paid). Look for phrases like 'satisfied', 'released', 'paid in full'.",
			},
			"attorney_fees": {
				Type:        genai.TypeString,
				Description: "Attorney's fees awarded, if any, as a decimal.",
			},
		},
		Required: []string{"case_number", "filed_date", "county", "plaintiff_creditor", "defendants_debtors", "judgment_amount"},
	}
}

func dismissalResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"case_number": {
				Type:        genai.TypeString,
				Description: "The unique case number assigned to the case being dismissed.",
			},
			"filed_date": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "The date the dismissal was filed with the court, as YYYY-MM-DD.",
			},
			"county": {
				Type:        genai.TypeString,
				Description: "The county where the case was filed and dismissed.",
			},
			"court": {
				Type:        genai.TypeString,
				Description: "The specific court (e.g. 'Superior Court', 'District Court') where the case was filed.",
			},
			"plaintiff": partyResponseSchema("The party who filed the original case (plaintiff)."),
			"defendants": {
				Type:        genai.TypeArray,
				Items:       partyResponseSchema("A party against whom the case was filed (defendant)."),
				Description: "The party or parties against whom the case was filed.",
			},
			"dismissal_type": {
				Type:        genai.TypeString,
				Enum:        []string{string(DismissalWithPrejudice), string(DismissalWithoutPrejudice), string(DismissalVoluntary), string(DismissalInvoluntary)},
				Description: "The type of dismissal.",
			},
			"judge": {
				Type:        genai.TypeString,
				Description: "The name of the judge who issued the dismissal.",
			},
			"reason": {
				Type:        genai.TypeString,
				Description: "Reason for dismissal, if stated.",
			},
		},
		Required: []string{"case_number", "filed_date", "county", "plaintiff", "defendants", "dismissal_type"},
	}
}

func affidavitResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"affiant": partyResponseSchema("The person making the sworn statement (the affiant)."),
			"date_of_affidavit": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "The date the affidavit was signed and sworn, as YYYY-MM-DD.",
			},
			"content_summary": {
				Type:        genai.TypeString,
				Description: "A concise summary (at most 500 characters) of the main points made in the affidavit.",
			},
			"notary_public": {
				Type:        genai.TypeString,
				Description: "The name of the notary public who witnessed the signing.",
			},
			"notary_county": {
				Type:        genai.TypeString,
				Description: "County where the affidavit was notarized.",
			},
			"notary_state": {
				Type:        genai.TypeString,
				Description: "State where the affidavit was notarized.",
			},
			"commission_expiration": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "Expiration date of the notary public's commission, as YYYY-MM-DD.",
			},
		},
		Required: []string{"affiant", "date_of_affidavit", "content_summary"},
	}
}

// responseSchemaFor returns the request-side output constraint for a class.
// "Other" has no extraction schema.
func responseSchemaFor(class DocumentClass) (*genai.Schema, error) {
	switch class {
	case ClassJudgment:
		return judgmentResponseSchema(), nil
	case ClassDismissal:
		return dismissalResponseSchema(), nil
	case ClassAffidavit:
		return affidavitResponseSchema(), nil
	}
	return nil, fmt.Errorf("%w: no extraction schema for %q", ErrUnknownClass, class)
}
