package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// WifiKnowledgeBase serves WiFi best practices and troubleshooting
// guidance from an embedded content bundle. Set ContentPath before
// Initialize to load an external bundle instead.
type WifiKnowledgeBase struct {
	ContentPath string

	mu          sync.RWMutex
	initialized bool
	categories  []string
	topics      []Topic
	content     map[string]topicBody
}

var _ Base = (*WifiKnowledgeBase)(nil)

type topicBody struct {
	Content    string      `yaml:"content"`
	References []Reference `yaml:"references"`
}

type contentBundle struct {
	Categories []string             `yaml:"categories"`
	Topics     []Topic              `yaml:"topics"`
	Content    map[string]topicBody `yaml:"content"`
}

func NewWifiKnowledgeBase(contentPath string) *WifiKnowledgeBase {
	return &WifiKnowledgeBase{ContentPath: contentPath}
}

// Initialize loads and indexes the content bundle. Calling it again
// after a successful load is a no-op, so multiple consumers may share
// one instance and each call Initialize before first use.
func (kb *WifiKnowledgeBase) Initialize(ctx context.Context) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.initialized {
		return nil
	}

	raw := defaultContent
	if kb.ContentPath != "" {
		external, err := os.ReadFile(kb.ContentPath)
		if err != nil {
			return fmt.Errorf("failed to initialize WiFi knowledge base: %v", err)
		}
		raw = external
	}

	var bundle contentBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return fmt.Errorf("failed to initialize WiFi knowledge base: %v", err)
	}

	kb.categories = bundle.Categories
	kb.topics = bundle.Topics
	kb.content = bundle.Content
	kb.initialized = true

	logrus.Infof("WiFi knowledge base initialized with %d topics in %d categories",
		len(kb.topics), len(kb.categories))
	return nil
}

// Query answers a natural language question by keyword routing to the
// closest topic. Unmatched queries get a generic answer with no topics.
func (kb *WifiKnowledgeBase) Query(ctx context.Context, query string) (*QueryResult, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.initialized {
		return nil, ErrNotInitialized
	}

	q := strings.ToLower(query)
	result := &QueryResult{}

	switch {
	case strings.Contains(q, "best practice") || strings.Contains(q, "design"):
		kb.answerFromTopic(result, "best_practices_1",
			"Based on recommended best practices for WiFi network design, you should consider proper AP placement, channel configuration, and power settings.")
	case strings.Contains(q, "troubleshoot") || strings.Contains(q, "issue") || strings.Contains(q, "problem"):
		kb.answerFromTopic(result, "troubleshooting_1",
			"For troubleshooting wireless issues, start by checking connectivity, signal strength, and potential interference sources.")
	case strings.Contains(q, "performance") || strings.Contains(q, "slow"):
		kb.answerFromTopic(result, "troubleshooting_2",
			"To troubleshoot poor wireless performance, use dashboard tools like Wireless Health, Air Marshal, and Channel Utilization.")
	case strings.Contains(q, "rf") || strings.Contains(q, "spectrum") || strings.Contains(q, "interference"):
		kb.answerFromTopic(result, "rf_analysis_1",
			"RF spectrum analysis helps identify interference sources and optimize wireless performance.")
	default:
		result.Answer = "I don't have specific information about that query. Try asking about WiFi best practices, troubleshooting, or RF analysis."
	}

	return result, nil
}

func (kb *WifiKnowledgeBase) answerFromTopic(result *QueryResult, topicID, answer string) {
	result.Answer = answer
	for _, topic := range kb.topics {
		if topic.ID == topicID {
			result.Topics = append(result.Topics, topic)
			break
		}
	}
	if body, ok := kb.content[topicID]; ok {
		result.References = append(result.References, body.References...)
	}
}

func (kb *WifiKnowledgeBase) GetCategories(ctx context.Context) ([]string, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.initialized {
		return nil, ErrNotInitialized
	}
	return append([]string(nil), kb.categories...), nil
}

func (kb *WifiKnowledgeBase) GetTopics(ctx context.Context, category string) ([]Topic, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.initialized {
		return nil, ErrNotInitialized
	}
	if category == "" {
		return append([]Topic(nil), kb.topics...), nil
	}
	if !lo.Contains(kb.categories, category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return lo.Filter(kb.topics, func(topic Topic, _ int) bool {
		return topic.Category == category
	}), nil
}

func (kb *WifiKnowledgeBase) GetTopicContent(ctx context.Context, topicID string) (*TopicContent, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.initialized {
		return nil, ErrNotInitialized
	}

	var meta *Topic
	for i := range kb.topics {
		if kb.topics[i].ID == topicID {
			meta = &kb.topics[i]
			break
		}
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}

	body, ok := kb.content[topicID]
	if !ok {
		return nil, fmt.Errorf("%w: no content for %s", ErrTopicNotFound, topicID)
	}

	return &TopicContent{
		Topic:      *meta,
		Content:    body.Content,
		References: append([]Reference(nil), body.References...),
	}, nil
}
