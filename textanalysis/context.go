package textanalysis

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Context holds the structured information extracted from a natural
// language problem description. Values are deduplicated within each
// category and keep their first-seen order.
type Context struct {
	LocationIdentifiers []string `json:"locationIdentifiers"`
	BuildingIdentifiers []string `json:"buildingIdentifiers"`
	NetworkIdentifiers  []string `json:"networkIdentifiers"`
	DeviceIdentifiers   []string `json:"deviceIdentifiers"`
	DeviceTypes         []string `json:"deviceTypes"`
	SSIDNames           []string `json:"ssidNames"`
	ErrorMessages       []string `json:"errorMessages"`
	UrgencyIndicators   []string `json:"urgencyIndicators"`
	TimeReferences      []string `json:"timeReferences"`
	ClientIdentifiers   []string `json:"clientIdentifiers"`
	APIdentifiers       []string `json:"apIdentifiers"`
}

// Merge folds other's values into c. Existing values are never dropped
// or reordered; only values c does not already have are appended.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}
	mergeUnique(&c.LocationIdentifiers, other.LocationIdentifiers)
	mergeUnique(&c.BuildingIdentifiers, other.BuildingIdentifiers)
	mergeUnique(&c.NetworkIdentifiers, other.NetworkIdentifiers)
	mergeUnique(&c.DeviceIdentifiers, other.DeviceIdentifiers)
	mergeUnique(&c.DeviceTypes, other.DeviceTypes)
	mergeUnique(&c.SSIDNames, other.SSIDNames)
	mergeUnique(&c.ErrorMessages, other.ErrorMessages)
	mergeUnique(&c.UrgencyIndicators, other.UrgencyIndicators)
	mergeUnique(&c.TimeReferences, other.TimeReferences)
	mergeUnique(&c.ClientIdentifiers, other.ClientIdentifiers)
	mergeUnique(&c.APIdentifiers, other.APIdentifiers)
}

// HasLocationHints reports whether the context names any room, building
// or access point that device matching could resolve.
func (c *Context) HasLocationHints() bool {
	return len(c.LocationIdentifiers) > 0 || len(c.BuildingIdentifiers) > 0 || len(c.APIdentifiers) > 0
}

func addUnique(dst *[]string, value string) {
	if value == "" {
		return
	}
	if !lo.Contains(*dst, value) {
		*dst = append(*dst, value)
	}
}

func mergeUnique(dst *[]string, src []string) {
	for _, value := range src {
		addUnique(dst, value)
	}
}

// DetectAmbiguities finds terms that were extracted into more than one
// category at once, keyed by ambiguity kind. A term that is both an SSID
// and a network identifier, or both a room and a building, needs the
// user to disambiguate before device matching can be trusted.
func DetectAmbiguities(context *Context) map[string][]string {
	ambiguities := map[string][]string{
		"ssid_network": {},
		"location":     {},
		"device":       {},
	}

	for _, ssid := range context.SSIDNames {
		if lo.Contains(context.NetworkIdentifiers, ssid) && !lo.Contains(ambiguities["ssid_network"], ssid) {
			ambiguities["ssid_network"] = append(ambiguities["ssid_network"], ssid)
		}
	}
	for _, location := range context.LocationIdentifiers {
		if lo.Contains(context.BuildingIdentifiers, location) && !lo.Contains(ambiguities["location"], location) {
			ambiguities["location"] = append(ambiguities["location"], location)
		}
	}

	if len(ambiguities["ssid_network"]) > 0 || len(ambiguities["location"]) > 0 || len(ambiguities["device"]) > 0 {
		logrus.Infof("Detected ambiguities in context extraction: %v", ambiguities)
	}
	return ambiguities
}

// ClarificationQuestions renders one question per ambiguous term, with
// deterministic wording per ambiguity kind.
func ClarificationQuestions(ambiguities map[string][]string) []string {
	var questions []string

	for _, term := range ambiguities["ssid_network"] {
		questions = append(questions, fmt.Sprintf(
			"I see that '%s' is mentioned. Is '%s' the name of the wireless network (SSID) that devices connect to, the name of the network in the dashboard, or both?",
			term, term))
	}
	for _, term := range ambiguities["location"] {
		questions = append(questions, fmt.Sprintf(
			"I see '%s' mentioned. Is '%s' a room number, a building name, or something else?",
			term, term))
	}
	for _, term := range ambiguities["device"] {
		questions = append(questions, fmt.Sprintf(
			"Could you clarify what type of device '%s' refers to?", term))
	}

	return questions
}
