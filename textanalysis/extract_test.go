package textanalysis

import (
	"testing"

	"github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
)

func TestExtractWithRegex(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *Context
	}{
		{
			name:  "room identifier also names the serving AP",
			query: "Users in room w23 cannot connect",
			want: &Context{
				LocationIdentifiers: []string{"w23"},
				APIdentifiers:       []string{"w23"},
			},
		},
		{
			name:  "building number doubles as network candidate",
			query: "Outage in building 5 since monday",
			want: &Context{
				BuildingIdentifiers: []string{"5"},
				NetworkIdentifiers:  []string{"5"},
				TimeReferences:      []string{"since monday"},
			},
		},
		{
			name:  "explicit ssid prefix",
			query: "SSID: CorpNet is not visible",
			want: &Context{
				SSIDNames: []string{"corpnet"},
			},
		},
		{
			name:  "open ssid caught without prefix",
			query: "Clients cannot stay on the guest-open network",
			want: &Context{
				NetworkIdentifiers: []string{"guest-open"},
				SSIDNames:          []string{"guest-open"},
			},
		},
		{
			name:  "explicit error phrase",
			query: `Users see an error: "authentication failed for user"`,
			want: &Context{
				ErrorMessages: []string{"authentication failed for user"},
			},
		},
		{
			name:  "quoted text fallback when it sounds like an error",
			query: `The laptop shows "unable to join network" every time`,
			want: &Context{
				DeviceTypes:   []string{"laptop"},
				ErrorMessages: []string{"unable to join network"},
			},
		},
		{
			name:  "explicit error suppresses the quoted text fallback",
			query: `We see an error: "auth timeout" and clients report "connection failed" too`,
			want: &Context{
				ErrorMessages: []string{"auth timeout"},
			},
		},
		{
			name:  "urgency terms in listed order",
			query: "Fix this ASAP, the outage is critical and high priority",
			want: &Context{
				UrgencyIndicators: []string{"asap", "critical", "high priority"},
			},
		},
		{
			name:  "time references keep the whole phrase",
			query: "Connection dropped on friday at 3:00 pm",
			want: &Context{
				TimeReferences: []string{"on friday", "at 3:00 pm"},
			},
		},
		{
			name:  "ap identifier after ap keyword",
			query: "Check AP lobby4 please",
			want: &Context{
				APIdentifiers: []string{"lobby4"},
			},
		},
		{
			name:  "multi device phrasing",
			query: "All devices in the office are affected",
			want: &Context{
				DeviceTypes: []string{"all devices"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractWithRegex(tt.query))
		})
	}
}

func TestExtractWithRegexQuoteFallbackRequiresErrorWord(t *testing.T) {
	context := extractWithRegex(`Banner says "welcome to lobby"`)
	assert.Empty(t, context.ErrorMessages)
}

func TestExtractWithRegexFeedsAmbiguityDetection(t *testing.T) {
	context := extractWithRegex("Clients cannot stay on the guest-open network")
	ambiguities := DetectAmbiguities(context)
	assert.Equal(t, []string{"guest-open"}, ambiguities["ssid_network"])
}

func TestExtractEmptyQuery(t *testing.T) {
	assert.Equal(t, &Context{}, Extract(""))
	assert.Equal(t, &Context{}, Extract("   \t"))
}

func TestExtractIncludesRegexFindings(t *testing.T) {
	context := Extract("Users in room W23 report SSID: CorpNet is down ASAP")

	assert.Contains(t, context.LocationIdentifiers, "w23")
	assert.Contains(t, context.APIdentifiers, "w23")
	assert.Contains(t, context.SSIDNames, "corpnet")
	assert.Contains(t, context.UrgencyIndicators, "asap")
}

func TestCollectQuotedErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []prose.Token
		want   []string
	}{
		{
			name: "double quoted span",
			tokens: []prose.Token{
				{Text: "saw"}, {Text: `"`}, {Text: "connection"}, {Text: "timed"},
				{Text: "out"}, {Text: `"`}, {Text: "today"},
			},
			want: []string{"connection timed out"},
		},
		{
			name: "backtick quote pair",
			tokens: []prose.Token{
				{Text: "``"}, {Text: "auth"}, {Text: "failed"}, {Text: "''"},
			},
			want: []string{"auth failed"},
		},
		{
			name: "short spans are skipped",
			tokens: []prose.Token{
				{Text: "'"}, {Text: "ok"}, {Text: "'"},
			},
			want: nil,
		},
		{
			name: "unclosed quote collects nothing",
			tokens: []prose.Token{
				{Text: `"`}, {Text: "dangling"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			context := &Context{}
			collectQuotedErrors(tt.tokens, context)
			assert.Equal(t, tt.want, context.ErrorMessages)
		})
	}
}
