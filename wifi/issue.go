package wifi

import (
	"github.com/airdiag/wifi-doctor/knowledge"
	"github.com/airdiag/wifi-doctor/pkg/models"
	"github.com/airdiag/wifi-doctor/textanalysis"
)

// TroubleshootingError is a pipeline level failure. Validation and
// knowledge base errors are recovered inside the pipeline and never
// surface as this type.
type TroubleshootingError struct {
	Message string
	Details map[string]any
}

func (e *TroubleshootingError) Error() string {
	return e.Message
}

// Issue is one diagnosed wireless problem.
type Issue struct {
	Type               string         `json:"issueType"`
	Subtype            string         `json:"issueSubtype"`
	Severity           int            `json:"severity"`
	Description        string         `json:"description"`
	AffectedComponents []string       `json:"affectedComponents"`
	Details            map[string]any `json:"details,omitempty"`
	ValidationDetails  map[string]any `json:"validationDetails,omitempty"`
}

// TroubleshootRequest carries the inputs of one troubleshooting run.
// SSIDData, ClientData and Description are each optional; the pipeline
// degrades to whatever subset is present.
type TroubleshootRequest struct {
	NetworkID   string                 `json:"networkId"`
	SSIDData    *models.SSIDConfig     `json:"ssidData,omitempty"`
	ClientData  *models.WirelessClient `json:"clientData,omitempty"`
	Description string                 `json:"description,omitempty"`
}

// NetworkData is the audit copy of a request attached to its result,
// extended with whatever the pipeline derived from it.
type NetworkData struct {
	TroubleshootRequest
	ExtractedContext *textanalysis.Context `json:"extractedContext,omitempty"`
	MatchedDevices   []models.Device       `json:"matchedDevices,omitempty"`
}

// Result is the outcome of one troubleshooting run.
type Result struct {
	Issues                 []Issue               `json:"issues"`
	PrimaryIssue           *Issue                `json:"primaryIssue"`
	Confidence             int                   `json:"confidence"`
	Recommendations        []string              `json:"recommendations"`
	KnowledgeReferences    []knowledge.Reference `json:"knowledgeReferences"`
	ClarificationQuestions []string              `json:"clarificationQuestions,omitempty"`
	NetworkData            *NetworkData          `json:"networkData,omitempty"`
}

// NewResult assembles a result, deriving the primary issue from the
// issue list.
func NewResult(issues []Issue, confidence int, recommendations []string, references []knowledge.Reference, networkData *NetworkData) *Result {
	return &Result{
		Issues:              issues,
		PrimaryIssue:        PrimaryIssue(issues),
		Confidence:          confidence,
		Recommendations:     recommendations,
		KnowledgeReferences: references,
		NetworkData:         networkData,
	}
}

// PrimaryIssue returns the most severe issue, ties keeping the earlier
// one. Nil when the list is empty.
func PrimaryIssue(issues []Issue) *Issue {
	if len(issues) == 0 {
		return nil
	}
	primary := issues[0]
	for _, issue := range issues[1:] {
		if issue.Severity > primary.Severity {
			primary = issue
		}
	}
	return &primary
}
