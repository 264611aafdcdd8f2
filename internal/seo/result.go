package seo

type GeneratedContent struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
}

// AuditFlag is one auditor finding. Auditor prompts in use emit either
// {type, message, severity} or {field, claim, issue, severity, reason};
// both decode here.
type AuditFlag struct {
	Type     string `json:"type,omitempty"`
	Field    string `json:"field,omitempty"`
	Claim    string `json:"claim,omitempty"`
	Issue    string `json:"issue,omitempty"`
	Message  string `json:"message,omitempty"`
	Severity string `json:"severity,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

type AuditResult struct {
	IsSafe                  bool        `json:"is_safe"`
	ConfidenceScore         float64     `json:"confidence_score"`
	PotentialHallucinations []AuditFlag `json:"potential_hallucinations"`
}

type Result struct {
	GeneratedDraft GeneratedContent `json:"generated_draft"`
	Audit          AuditResult      `json:"audit"`
}

// Approved reports whether the audit clears the draft for publication
// without human review.
func (a AuditResult) Approved() bool {
	return a.IsSafe && a.ConfidenceScore > 0.9
}

// ProductPayload is the product view sent to both agents.
type ProductPayload struct {
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Attributes  map[string]any `json:"attributes"`
	Components  *Components    `json:"components,omitempty"`
}

// AuditPayload is what the auditor checks: the product and the writer output.
type AuditPayload struct {
	Product          ProductPayload   `json:"product"`
	GeneratedContent GeneratedContent `json:"generated_content"`
}
