package textanalysis

import (
	"regexp"
	"strings"
)

// Pattern tables for the regex extraction pass. Matching always runs on
// the lowercased query.
var (
	roomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:room|rm)\s*([a-z0-9]+-?[a-z0-9]*)\b`),
		regexp.MustCompile(`\b([a-z][0-9]{1,3})\b`),
		regexp.MustCompile(`\b((?:east|west|north|south|e|w|n|s)[- ]?[0-9]{1,3})\b`),
	}

	buildingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:building|school|site)\s*([0-9]+)\b`),
		regexp.MustCompile(`\b((?:bldg|sch)\.?\s*[0-9]+)\b`),
	}

	networkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bnetwork[:\s]+["']?([a-z0-9_-]+)["']?\b`),
		regexp.MustCompile(`\b(?:in|on|at)\s+(?:the\s+)?["']?([a-z0-9_-]+)["']?\s+(?:network|site)\b`),
	}

	deviceTypePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(macbook|windows|laptop|desktop|computer|phone|iphone|android|ios|pc|mac|chromebook|tablet|ipad)\b`),
		regexp.MustCompile(`\b(multiple devices|all devices|several devices)\b`),
	}

	ssidPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bssid[:\s]+["']?([a-z0-9_-]+)["']?\b`),
		regexp.MustCompile(`\b(?:wifi|wireless|network)[:\s]+["']?([a-z0-9_-]+)["']?\b`),
		regexp.MustCompile(`\bconnect(?:ing)?\s+to\s+["']?([a-z0-9_-]+)["']?\b`),
	}

	// SSIDs with "open" in the name get special attention downstream,
	// catch them even without an ssid/wifi prefix.
	openSSIDPattern = regexp.MustCompile(`\b([a-z0-9_-]*open[a-z0-9_-]*)\b`)

	errorMessagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`error\s+(?:message|saying|states?|that\s+says?)[:\s]+["']([^"']+)["']`),
		regexp.MustCompile(`(?:get|receive|seeing|see|shows?)\s+(?:an|the)?\s+error[:\s]+["']([^"']+)["']`),
	}

	// At least five characters, to keep quoted shorthand out.
	quotedTextPattern = regexp.MustCompile(`["']([^"']{5,})["']`)

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:on|at|during|since|before|after)\s+([a-z]+day)\b`),
		regexp.MustCompile(`\b(?:on|at|during|since)\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm))\b`),
		regexp.MustCompile(`\b(this|last|next)\s+(morning|afternoon|evening|night|week|day)\b`),
	}

	apPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bap\s*([a-z0-9_-]+)\b`),
		regexp.MustCompile(`\baccess\s+point\s*([a-z0-9_-]+)\b`),
		regexp.MustCompile(`\b((?:ap|base|station)[_-]?[a-z0-9]+)\b`),
	}
)

func collectMatches(patterns []*regexp.Regexp, text string, dst *[]string) {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			addUnique(dst, strings.TrimSpace(match[1]))
		}
	}
}

// extractWithRegex is the always-available extraction pass. It serves
// alone when the NLP pass fails and otherwise supplements it with the
// rigid patterns a tagger tends to miss.
func extractWithRegex(query string) *Context {
	context := &Context{}
	lower := strings.ToLower(query)

	collectMatches(roomPatterns, lower, &context.LocationIdentifiers)

	// Building identifiers double as network candidates; sites are
	// commonly mapped one dashboard network per building.
	for _, pattern := range buildingPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			building := strings.TrimSpace(match[1])
			addUnique(&context.BuildingIdentifiers, building)
			addUnique(&context.NetworkIdentifiers, building)
		}
	}

	collectMatches(networkPatterns, lower, &context.NetworkIdentifiers)
	collectMatches(deviceTypePatterns, lower, &context.DeviceTypes)
	collectMatches(ssidPatterns, lower, &context.SSIDNames)

	for _, match := range openSSIDPattern.FindAllStringSubmatch(lower, -1) {
		addUnique(&context.SSIDNames, strings.TrimSpace(match[1]))
	}

	collectMatches(errorMessagePatterns, lower, &context.ErrorMessages)

	// Without an explicit error phrase, fall back to quoted text that
	// sounds like an error.
	if len(context.ErrorMessages) == 0 {
		for _, match := range quotedTextPattern.FindAllStringSubmatch(lower, -1) {
			quoted := strings.TrimSpace(match[1])
			if strings.Contains(quoted, "error") || strings.Contains(quoted, "unable") || strings.Contains(quoted, "fail") {
				addUnique(&context.ErrorMessages, quoted)
			}
		}
	}

	for _, term := range urgencyTerms {
		if strings.Contains(lower, term) {
			addUnique(&context.UrgencyIndicators, term)
		}
	}

	for _, pattern := range timePatterns {
		for _, match := range pattern.FindAllString(lower, -1) {
			addUnique(&context.TimeReferences, strings.TrimSpace(match))
		}
	}

	collectMatches(apPatterns, lower, &context.APIdentifiers)

	// Room identifiers frequently name the AP serving that room.
	for _, room := range context.LocationIdentifiers {
		addUnique(&context.APIdentifiers, room)
	}

	return context
}
