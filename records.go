package legaldoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when an extracted payload violates a field rule.
var ErrInvalidRecord = errors.New("invalid record")

// caseNumberRE enforces the court case-number format, e.g. ABC-123-2023.
var caseNumberRE = regexp.MustCompile(`^[A-Z]{3}-\d{3}-\d{4}$`)

// maxSummaryLength bounds the affidavit content summary.
const maxSummaryLength = 500

// dateLayout is the wire format for civil dates.
const dateLayout = "2006-01-02"

// Date is a civil date (no time-of-day component) serialized as 2006-01-02.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Amount is a decimal money value. Models occasionally render amounts with
// thousands separators or as quoted strings; UnmarshalJSON accepts both.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a plain decimal string. It panics on
// malformed input and is intended for literals in tests and fixtures.
func NewAmount(s string) Amount {
	return Amount{decimal.RequireFromString(s)}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", "")
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	a.Decimal = dec
	return nil
}

// SatisfactionStatus reports whether a judgment has been satisfied (paid).
// Models sometimes answer with phrases instead of booleans; the common ones
// are normalized and everything else is left unknown rather than guessed.
type SatisfactionStatus struct {
	Known     bool
	Satisfied bool
}

func (s SatisfactionStatus) MarshalJSON() ([]byte, error) {
	if !s.Known {
		return []byte("null"), nil
	}
	return json.Marshal(s.Satisfied)
}

func (s *SatisfactionStatus) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		*s = SatisfactionStatus{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*s = SatisfactionStatus{Known: true, Satisfied: v}
		return nil
	}
	var phrase string
	if err := json.Unmarshal(b, &phrase); err != nil {
		return fmt.Errorf("satisfaction status must be a boolean or string: %w", err)
	}
	*s = normalizeSatisfaction(phrase)
	return nil
}

// normalizeSatisfaction maps free-text satisfaction language onto a status.
// "unsatisfied" is checked first because it contains "satisf".
func normalizeSatisfaction(phrase string) SatisfactionStatus {
	lower := strings.ToLower(phrase)
	switch {
	case strings.Contains(lower, "unsatisfied"):
		return SatisfactionStatus{Known: true, Satisfied: false}
	case strings.Contains(lower, "satisf"),
		strings.Contains(lower, "paid in full"),
		strings.Contains(lower, "release"):
		return SatisfactionStatus{Known: true, Satisfied: true}
	}
	return SatisfactionStatus{}
}

// JudgmentData holds the fields extracted from a judgment filing.
type JudgmentData struct {
	CaseNumber         string             `json:"case_number"`
	FiledDate          Date               `json:"filed_date"`
	County             string             `json:"county"`
	Court              *string            `json:"court,omitempty"`
	PlaintiffCreditor  Party              `json:"plaintiff_creditor"`
	DefendantsDebtors  []Party            `json:"defendants_debtors"`
	JudgmentAmount     Amount             `json:"judgment_amount"`
	InterestRate       *Amount            `json:"interest_rate,omitempty"`
	Judge              *string            `json:"judge,omitempty"`
	SatisfactionStatus SatisfactionStatus `json:"satisfaction_status"`
	AttorneyFees       *Amount            `json:"attorney_fees,omitempty"`
}

func (*JudgmentData) Kind() DocumentClass { return ClassJudgment }

func (j *JudgmentData) Validate() error {
	if !caseNumberRE.MatchString(j.CaseNumber) {
		return fmt.Errorf("%w: case number %q must match the ABC-123-2023 format", ErrInvalidRecord, j.CaseNumber)
	}
	if j.FiledDate.IsZero() {
		return fmt.Errorf("%w: judgment requires a filed date", ErrInvalidRecord)
	}
	if j.County == "" {
		return fmt.Errorf("%w: judgment requires a county", ErrInvalidRecord)
	}
	if j.PlaintiffCreditor.Name == "" {
		return fmt.Errorf("%w: judgment requires a plaintiff/creditor name", ErrInvalidRecord)
	}
	if len(j.DefendantsDebtors) == 0 {
		return fmt.Errorf("%w: judgment requires at least one defendant/debtor", ErrInvalidRecord)
	}
	if j.JudgmentAmount.IsNegative() {
		return fmt.Errorf("%w: judgment amount must not be negative", ErrInvalidRecord)
	}
	if j.InterestRate != nil {
		if j.InterestRate.IsNegative() || j.InterestRate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: interest rate %s must be a decimal between 0 and 1", ErrInvalidRecord, j.InterestRate)
		}
	}
	if j.AttorneyFees != nil && j.AttorneyFees.IsNegative() {
		return fmt.Errorf("%w: attorney fees must not be negative", ErrInvalidRecord)
	}
	return nil
}

// DismissalType categorizes how a case was dismissed.
type DismissalType string

const (
	DismissalWithPrejudice    DismissalType = "with prejudice"
	DismissalWithoutPrejudice DismissalType = "without prejudice"
	DismissalVoluntary        DismissalType = "voluntary"
	DismissalInvoluntary      DismissalType = "involuntary"
)

// Valid reports whether t is one of the known dismissal types.
func (t DismissalType) Valid() bool {
	switch t {
	case DismissalWithPrejudice, DismissalWithoutPrejudice, DismissalVoluntary, DismissalInvoluntary:
		return true
	}
	return false
}

// DismissalData holds the fields extracted from a dismissal filing.
type DismissalData struct {
	CaseNumber    string        `json:"case_number"`
	FiledDate     Date          `json:"filed_date"`
	County        string        `json:"county"`
	Court         *string       `json:"court,omitempty"`
	Plaintiff     Party         `json:"plaintiff"`
	Defendants    []Party       `json:"defendants"`
	DismissalType DismissalType `json:"dismissal_type"`
	Judge         *string       `json:"judge,omitempty"`
	Reason        *string       `json:"reason,omitempty"`
}

func (*DismissalData) Kind() DocumentClass { return ClassDismissal }

func (d *DismissalData) Validate() error {
	if d.CaseNumber == "" {
		return fmt.Errorf("%w: dismissal requires a case number", ErrInvalidRecord)
	}
	if d.FiledDate.IsZero() {
		return fmt.Errorf("%w: dismissal requires a filed date", ErrInvalidRecord)
	}
	if d.County == "" {
		return fmt.Errorf("%w: dismissal requires a county", ErrInvalidRecord)
	}
	if d.Plaintiff.Name == "" {
		return fmt.Errorf("%w: dismissal requires a plaintiff name", ErrInvalidRecord)
	}
	if len(d.Defendants) == 0 {
		return fmt.Errorf("%w: dismissal requires at least one defendant", ErrInvalidRecord)
	}
	if !d.DismissalType.Valid() {
		return fmt.Errorf("%w: unknown dismissal type %q", ErrInvalidRecord, d.DismissalType)
	}
	return nil
}

// AffidavitData holds the fields extracted from an affidavit.
type AffidavitData struct {
	Affiant              Party   `json:"affiant"`
	DateOfAffidavit      Date    `json:"date_of_affidavit"`
	ContentSummary       string  `json:"content_summary"`
	NotaryPublic         *string `json:"notary_public,omitempty"`
	NotaryCounty         *string `json:"notary_county,omitempty"`
	NotaryState          *string `json:"notary_state,omitempty"`
	CommissionExpiration *Date   `json:"commission_expiration,omitempty"`
}

func (*AffidavitData) Kind() DocumentClass { return ClassAffidavit }

func (a *AffidavitData) Validate() error {
	if a.Affiant.Name == "" {
		return fmt.Errorf("%w: affidavit requires an affiant name", ErrInvalidRecord)
	}
	if a.DateOfAffidavit.IsZero() {
		return fmt.Errorf("%w: affidavit requires a signing date", ErrInvalidRecord)
	}
	if a.ContentSummary == "" {
		return fmt.Errorf("%w: affidavit requires a content summary", ErrInvalidRecord)
	}
	if len(a.ContentSummary) > maxSummaryLength {
		return fmt.Errorf("%w: content summary exceeds %d characters", ErrInvalidRecord, maxSummaryLength)
	}
	return nil
}
