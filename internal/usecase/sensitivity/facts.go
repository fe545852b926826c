package sensitivity

import (
	"regexp"
	"strings"
	"sync"
)

// FactKey is the closed set of fact topics the persona may self-disclose
type FactKey string

const (
	FactSchool   FactKey = "school"
	FactEmployer FactKey = "employer"
	FactAddress  FactKey = "address"
	FactEmail    FactKey = "email"
	FactPhone    FactKey = "phone"
)

// FactStore remembers facts the persona has already stated in this session.
// At most one value per key; later extraction overwrites (last-stated-wins).
// The persona must stay consistent with whatever it said, not with ground
// truth. Created empty at session start, discarded at session end.
// Safe for concurrent use: transport events and out-of-band webhook
// deliveries both write through it.
type FactStore struct {
	mu    sync.Mutex
	facts map[FactKey]string
}

// NewFactStore creates an empty fact store
func NewFactStore() *FactStore {
	return &FactStore{facts: make(map[FactKey]string)}
}

var factPatterns = []struct {
	key FactKey
	re  *regexp.Regexp
}{
	{FactEmployer, regexp.MustCompile(`(?i)\bI work (?:at|for)\s+([^.,!?\n]+)`)},
	{FactSchool, regexp.MustCompile(`(?i)\bmy (?:school|university|college) is\s+([^.,!?\n]+)`)},
	{FactAddress, regexp.MustCompile(`(?i)\bmy address is\s+([^.!?\n]+)`)},
	{FactEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{FactPhone, regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)},
}

// Extract scans an utterance for self-disclosure patterns and upserts any
// matches. Returns the keys that were written.
func (fs *FactStore) Extract(utterance string) []FactKey {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var written []FactKey
	for _, p := range factPatterns {
		m := p.re.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		value := m[0]
		if len(m) > 1 {
			value = m[1]
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		fs.facts[p.key] = value
		written = append(written, p.key)
	}
	return written
}

// Get returns the stored value for a key, if any
func (fs *FactStore) Get(key FactKey) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.facts[key]
	return v, ok
}

// Len reports how many facts are stored
func (fs *FactStore) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.facts)
}

var topicKeywords = []struct {
	key      FactKey
	keywords []string
}{
	{FactSchool, []string{"school", "university", "college"}},
	{FactEmployer, []string{"company", "employer"}},
	{FactAddress, []string{"address"}},
	{FactEmail, []string{"email"}},
	{FactPhone, []string{"phone"}},
}

// TopicsIn returns the fact topics an utterance asks about, in declaration
// order.
func TopicsIn(utterance string) []FactKey {
	lower := strings.ToLower(utterance)
	var topics []FactKey
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, t.key)
				break
			}
		}
	}
	return topics
}
