package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAggregateStatistics(t *testing.T) {
	s := Series{
		Conversations: []map[string]any{
			{"date": "2025-01-01", "conversation_count": float64(3)},
			{"date": "2025-01-02", "conversation_count": float64(4)},
		},
		Terminals: []map[string]any{
			{"date": "2025-01-01", "terminal_count": float64(2)},
			{"date": "2025-01-02", "terminal_count": float64(5)},
		},
		Messages:   []map[string]any{{"date": "2025-01-01", "message_count": float64(10)}},
		TokenCosts: []map[string]any{{"date": "2025-01-01", "total_tokens": float64(100), "cost": "0.25"}},
		SessionInteractions: []map[string]any{
			{"date": "2025-01-01", "interactions": float64(1)},
			{"date": "2025-01-02", "interactions": float64(2.5)},
		},
		TokenOutputSpeed: []map[string]any{{"date": "2025-01-02", "token_output_speed": float64(40)}},
		Satisfaction:     []map[string]any{{"date": "2025-01-02", "rate": float64(0.9)}},
		ResponseTime:     []map[string]any{{"date": "2025-01-02", "latency": float64(1.2)}},
	}

	stats, charts := AggregateStatistics(s)
	if stats.TotalConversations != 7 || stats.TotalEndUsers != 5 || stats.TotalMessages != 10 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TotalTokens != 100 || stats.TotalTokenCost != 0.25 {
		t.Fatalf("unexpected token totals: %+v", stats)
	}
	if stats.AvgSessionInteractions != 2.5 || stats.TokenOutputSpeed != 40 || stats.UserSatisfactionRate != 0.9 || stats.AvgResponseTime != 1.2 {
		t.Fatalf("unexpected last values: %+v", stats)
	}
	if len(charts.Conversations) != 2 || charts.Conversations[1].Date != "Jan 2" || charts.Conversations[1].Value != 4 {
		t.Fatalf("unexpected chart: %+v", charts.Conversations)
	}
}

func TestAggregateStatisticsEmpty(t *testing.T) {
	stats, charts := AggregateStatistics(Series{})
	if stats.TotalEndUsers != 0 || stats.AvgSessionInteractions != 0 || stats.TotalConversations != 0 {
		t.Fatalf("expected zero statistics, got %+v", stats)
	}
	if charts.Conversations == nil || len(charts.UserSatisfaction) != 0 {
		t.Fatalf("expected empty non-nil charts, got %+v", charts)
	}
}

func monitoringServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		switch {
		case p == "/console/api/login":
			w.Write([]byte(`{"data":{"access_token":"tok"}}`))
		case p == "/console/api/apps":
			w.Write([]byte(`{"data":[{"id":"app-a","name":"A"},{"id":"app-b","name":"B"}]}`))
		case p == "/console/api/apps/app-a/api-keys":
			w.WriteHeader(http.StatusForbidden)
		case p == "/console/api/apps/app-b/api-keys":
			w.Write([]byte(`{"data":[{"token":"app-key"}]}`))
		case p == "/console/api/apps/app-b/chat-conversations":
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasSuffix(p, "/statistics/daily-conversations"):
			if r.URL.Query().Get("start") != "2025-03-03 00:00" || r.URL.Query().Get("end") != "2025-03-10 23:59" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"data":[{"date":"2025-03-09","conversation_count":6}]}`))
		case strings.HasSuffix(p, "/statistics/token-costs"):
			w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMonitorReportToleratesFailingMetrics(t *testing.T) {
	srv := monitoringServer(t)
	m := NewMonitor(NewDifyClient(DifyConfig{ConsoleOrigin: srv.URL, Email: "a@b.c", Password: "pw"}))
	m.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	report, err := m.Report(context.Background(), "app-key", 0)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.AppID != "app-b" || report.Period != 7 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.StartDate != "2025-03-03 00:00" || report.EndDate != "2025-03-10 23:59" {
		t.Fatalf("unexpected range: %s - %s", report.StartDate, report.EndDate)
	}
	if report.Statistics.TotalConversations != 6 || report.Statistics.TotalTokens != 0 {
		t.Fatalf("unexpected statistics: %+v", report.Statistics)
	}
	if len(report.ChartData.TokenUsage) != 0 || len(report.ChartData.Conversations) != 1 {
		t.Fatalf("unexpected charts: %+v", report.ChartData)
	}
}

func TestMonitorReportUnknownKey(t *testing.T) {
	srv := monitoringServer(t)
	m := NewMonitor(NewDifyClient(DifyConfig{ConsoleOrigin: srv.URL, Email: "a@b.c", Password: "pw"}))

	_, err := m.Report(context.Background(), "other", 7)
	if !errors.Is(err, ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}
}
