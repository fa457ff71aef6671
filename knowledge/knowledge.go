package knowledge

import (
	"context"
	"errors"
)

// Sentinel errors returned by knowledge base implementations. Callers
// match them with errors.Is instead of parsing messages.
var (
	ErrNotInitialized  = errors.New("knowledge base not initialized")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrUnknownCategory = errors.New("unknown category")
)

// Reference points at an external documentation source.
type Reference struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Topic is the catalog entry of one knowledge base topic.
type Topic struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	SourceURL   string `json:"sourceUrl,omitempty" yaml:"source_url"`
}

// TopicContent is a topic's catalog entry combined with its content body.
type TopicContent struct {
	Topic      `yaml:",inline"`
	Content    string      `json:"content"`
	References []Reference `json:"references"`
}

// QueryResult is the response to a natural language query.
type QueryResult struct {
	Answer     string      `json:"answer"`
	Topics     []Topic     `json:"topics"`
	References []Reference `json:"references"`
}

// Base is the capability interface every knowledge base implementation
// satisfies. Consumers depend on this interface only, never on a
// concrete implementation.
type Base interface {
	Initialize(ctx context.Context) error
	Query(ctx context.Context, query string) (*QueryResult, error)
	GetCategories(ctx context.Context) ([]string, error)
	// GetTopics lists topics for one category, or all topics when
	// category is empty.
	GetTopics(ctx context.Context, category string) ([]Topic, error)
	GetTopicContent(ctx context.Context, topicID string) (*TopicContent, error)
}
