package textanalysis

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	prepositions = map[string]bool{"at": true, "on": true, "in": true}

	connectVerbs = map[string]bool{
		"connect": true, "connecting": true, "connected": true,
		"join": true, "joining": true, "joined": true,
	}

	deviceKeywords = map[string]bool{
		"laptop": true, "computer": true, "phone": true, "mobile": true,
		"tablet": true, "pc": true, "mac": true, "device": true,
	}

	urgencyTerms = []string{
		"asap", "urgent", "emergency", "immediately", "right away",
		"critical", "high priority", "as soon as possible",
	}
)

// Extract pulls structured context out of a natural language query. The
// NLP pass runs first and its findings win; the regex pass is merged in
// to catch the rigid patterns a tagger misses. When the NLP pass fails
// the regex pass alone serves the request; extraction never fails.
func Extract(query string) *Context {
	if strings.TrimSpace(query) == "" {
		return &Context{}
	}

	context, err := extractWithNLP(query)
	if err != nil {
		logrus.Warnf("NLP-based extraction failed: %v. Falling back to regex.", err)
		return extractWithRegex(query)
	}

	logrus.Debugf("NLP extracted context: ssids=%v networks=%v deviceTypes=%v",
		context.SSIDNames, context.NetworkIdentifiers, context.DeviceTypes)

	context.Merge(extractWithRegex(query))
	return context
}

// extractWithNLP tokenizes, POS-tags and entity-chunks the query.
func extractWithNLP(query string) (*Context, error) {
	doc, err := prose.NewDocument(query)
	if err != nil {
		return nil, err
	}

	context := &Context{}

	// People name networks after themselves, so person entities are SSID
	// candidates; places and organizations are network candidates.
	for _, entity := range doc.Entities() {
		switch entity.Label {
		case "PERSON":
			addUnique(&context.SSIDNames, entity.Text)
		case "GPE":
			addUnique(&context.NetworkIdentifiers, entity.Text)
		}
	}

	tokens := doc.Tokens()
	for i, token := range tokens {
		lower := strings.ToLower(token.Text)

		// Preposition followed by a proper noun names a network.
		if prepositions[lower] && i+1 < len(tokens) && strings.HasPrefix(tokens[i+1].Tag, "NNP") {
			addUnique(&context.NetworkIdentifiers, tokens[i+1].Text)
		}

		// "connect to X" and friends name the SSID being joined.
		if strings.HasPrefix(token.Tag, "VB") && connectVerbs[lower] && i+2 < len(tokens) &&
			strings.EqualFold(tokens[i+1].Text, "to") && strings.HasPrefix(tokens[i+2].Tag, "NN") {
			addUnique(&context.SSIDNames, tokens[i+2].Text)
		}
	}

	// "X at X" with the same word on both sides usually means the SSID
	// and the network share that name.
	for i := 1; i+1 < len(tokens); i++ {
		if !strings.EqualFold(tokens[i].Text, "at") {
			continue
		}
		prev, next := tokens[i-1].Text, tokens[i+1].Text
		if strings.EqualFold(prev, next) && len(prev) > 1 {
			addUnique(&context.SSIDNames, prev)
			addUnique(&context.NetworkIdentifiers, next)
		}
	}

	for i, token := range tokens {
		lower := strings.ToLower(token.Text)
		if !deviceKeywords[lower] {
			continue
		}
		addUnique(&context.DeviceTypes, lower)
		// A preceding adjective or noun refines the device type, as in
		// "windows laptop" or "old phone".
		if i > 0 && (strings.HasPrefix(tokens[i-1].Tag, "JJ") || strings.HasPrefix(tokens[i-1].Tag, "NN")) {
			addUnique(&context.DeviceTypes, strings.ToLower(tokens[i-1].Text+" "+token.Text))
		}
	}

	collectQuotedErrors(tokens, context)

	for _, token := range tokens {
		lower := strings.ToLower(token.Text)
		if lo.Contains(urgencyTerms, lower) {
			addUnique(&context.UrgencyIndicators, lower)
		}
	}

	return context, nil
}

// collectQuotedErrors treats quoted spans of more than three characters
// as error message candidates.
func collectQuotedErrors(tokens []prose.Token, context *Context) {
	inQuote := false
	var parts []string

	for _, token := range tokens {
		switch token.Text {
		case `"`, "'", "``", "''":
			if inQuote {
				quoted := strings.TrimSpace(strings.Join(parts, " "))
				if len(quoted) > 3 {
					addUnique(&context.ErrorMessages, quoted)
				}
				parts = nil
			}
			inQuote = !inQuote
		default:
			if inQuote {
				parts = append(parts, token.Text)
			}
		}
	}
}
