package observability

import (
	"strconv"
	"sync"
	"time"
)

// Pipeline stage labels used for counters.
const (
	StageNormalize  = "normalize"
	StageSummarize  = "summarize"
	StageClassify   = "classify"
	StageSynthesize = "synthesize_fields"
	StagePrioritize = "prioritize"
	StageQuotaCheck = "quota_check"
	StageCommit     = "commit"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	stageCount    map[string]int64
	fallbackCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		stageCount:    make(map[string]int64),
		fallbackCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordStage counts a pipeline stage completion with its outcome
// ("ok", "fallback" or an error code).
func (m *Metrics) RecordStage(stage, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageCount[stage+"|"+outcome]++
}

// RecordFallback counts a degraded-but-successful stage result.
func (m *Metrics) RecordFallback(stage string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackCount[stage]++
}

// StageCount returns the counter for a stage/outcome pair.
func (m *Metrics) StageCount(stage, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stageCount[stage+"|"+outcome]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
