package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultLogCapacity はメモリ上に保持するリクエストログの上限件数です。
const defaultLogCapacity = 10000

// LogEntry は単一のリクエストログを表します。ペイロードは記録しません。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	RequestID    string        `json:"requestId,omitempty"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
	Bytes        int           `json:"bytes"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	mu       sync.RWMutex
	logs     []LogEntry
	next     int
	full     bool
	excluded []string
	now      func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。capacity が0以下の場合は既定値を使います。
func NewMonitoringService(capacity int) *MonitoringService {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &MonitoringService{
		logs:     make([]LogEntry, capacity),
		excluded: []string{"/api/v1/monitoring", "/health"},
		now:      time.Now,
	}
}

// LogRequest はリクエストを記録します。上限を超えると古いものから上書きします。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[s.next] = entry
	s.next = (s.next + 1) % len(s.logs)
	if s.next == 0 {
		s.full = true
	}
}

// entries returns the stored logs oldest first. Caller holds the read lock.
func (s *MonitoringService) entries() []LogEntry {
	if !s.full {
		return append([]LogEntry(nil), s.logs[:s.next]...)
	}
	out := make([]LogEntry, 0, len(s.logs))
	out = append(out, s.logs[s.next:]...)
	return append(out, s.logs[:s.next]...)
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		path := c.Request.URL.Path
		for _, prefix := range s.excluded {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			RequestID:    c.GetString(RequestIDKey),
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
			Bytes:        c.Writer.Size(),
		})
	}
}

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "requestID"

// EndpointStats は1エンドポイントの集計値です。
type EndpointStats struct {
	Endpoint       string `json:"endpoint"`
	Requests       int    `json:"requests"`
	AvgResponseMs  int64  `json:"avgResponseMs"`
	ServerErrors   int    `json:"serverErrors"`
	ClientErrors   int    `json:"clientErrors"`
	BytesDelivered int64  `json:"bytesDelivered"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	PeriodHours  int             `json:"periodHours"`
	TotalCount   int             `json:"totalCount"`
	StatusCodes  map[string]int  `json:"statusCodes"`
	Endpoints    []EndpointStats `json:"endpoints"`
	RecentErrors []LogEntry      `json:"recentErrors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	logs := s.entries()
	s.mu.RUnlock()

	since := s.now().Add(-time.Duration(periodHours) * time.Hour)

	statusCodes := map[string]int{
		"2xx Success":      0,
		"4xx Client Error": 0,
		"5xx Server Error": 0,
	}
	byPath := make(map[string]*EndpointStats)
	durations := make(map[string]time.Duration)
	total := 0
	recentErrors := make([]LogEntry, 0)

	for i := len(logs) - 1; i >= 0; i-- {
		entry := logs[i]
		if entry.Timestamp.Before(since) {
			continue
		}
		total++

		stats, ok := byPath[entry.Path]
		if !ok {
			stats = &EndpointStats{Endpoint: entry.Path}
			byPath[entry.Path] = stats
		}
		stats.Requests++
		stats.BytesDelivered += int64(max(entry.Bytes, 0))
		durations[entry.Path] += entry.ResponseTime

		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCodes["2xx Success"]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCodes["4xx Client Error"]++
			stats.ClientErrors++
		case entry.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
			stats.ServerErrors++
			if len(recentErrors) < 10 {
				recentErrors = append(recentErrors, entry)
			}
		}
	}

	endpoints := make([]EndpointStats, 0, len(byPath))
	for path, stats := range byPath {
		stats.AvgResponseMs = durations[path].Milliseconds() / int64(stats.Requests)
		endpoints = append(endpoints, *stats)
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].Endpoint < endpoints[j].Endpoint })

	return DashboardData{
		PeriodHours:  periodHours,
		TotalCount:   total,
		StatusCodes:  statusCodes,
		Endpoints:    endpoints,
		RecentErrors: recentErrors,
	}
}
