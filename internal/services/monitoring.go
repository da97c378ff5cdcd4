package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

// Series are the raw daily statistics rows returned by Dify, one slice per query.
type Series struct {
	Conversations       []map[string]any
	Terminals           []map[string]any
	ActiveUsers         []map[string]any
	TokenCosts          []map[string]any
	SessionInteractions []map[string]any
	UserInteractions    []map[string]any
	TokenOutputSpeed    []map[string]any
	Satisfaction        []map[string]any
	ResponseTime        []map[string]any
	Messages            []map[string]any
}

// Monitor builds usage reports for Dify apps.
type Monitor struct {
	Dify *DifyClient
	now  func() time.Time
}

func NewMonitor(dify *DifyClient) *Monitor {
	return &Monitor{Dify: dify, now: time.Now}
}

// Report resolves the app behind apiKey and aggregates its statistics.
func (m *Monitor) Report(ctx context.Context, apiKey string, period int) (*models.MonitoringReport, error) {
	if period <= 0 {
		period = 7
	}
	session, err := m.Dify.Login(ctx)
	if err != nil {
		return nil, err
	}
	app, err := session.FindAppByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	startDate, endDate := m.dateRange(ctx, session, app.ID, period)
	start := startDate.Format("2006-01-02") + " 00:00"
	end := endDate.Format("2006-01-02") + " 23:59"
	log.Printf("Fetching monitoring data for app %s from %s to %s", app.ID, start, end)

	series := m.fetchSeries(ctx, session, app.ID, start, end)
	stats, charts := AggregateStatistics(series)

	return &models.MonitoringReport{
		Success:    true,
		AppID:      app.ID,
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		Statistics: stats,
		ChartData:  charts,
	}, nil
}

// dateRange spans the app's recent conversations, padded a day each side,
// falling back to the last period days.
func (m *Monitor) dateRange(ctx context.Context, session *DifySession, appID string, period int) (time.Time, time.Time) {
	now := m.now()
	fallback := now.AddDate(0, 0, -period)

	convs, err := session.ChatConversations(ctx, appID, ConversationQuery{Page: 1, Limit: 10})
	if err != nil {
		log.Printf("Could not fetch conversation dates, using default range: %v", err)
		return fallback, now
	}
	if len(convs) == 0 {
		return fallback, now
	}

	oldest, newest := convs[0].CreatedAt, convs[0].CreatedAt
	for _, c := range convs[1:] {
		if c.CreatedAt < oldest {
			oldest = c.CreatedAt
		}
		if c.CreatedAt > newest {
			newest = c.CreatedAt
		}
	}
	loc := now.Location()
	return time.Unix(oldest, 0).In(loc).AddDate(0, 0, -1), time.Unix(newest, 0).In(loc).AddDate(0, 0, 1)
}

func (m *Monitor) fetchSeries(ctx context.Context, session *DifySession, appID, start, end string) Series {
	var s Series
	queries := []struct {
		metric string
		dst    *[]map[string]any
	}{
		{"daily-conversations", &s.Conversations},
		{"daily-end-users", &s.Terminals},
		{"daily-end-users", &s.ActiveUsers},
		{"token-costs", &s.TokenCosts},
		{"average-session-interactions", &s.SessionInteractions},
		{"average-session-interactions", &s.UserInteractions},
		{"token-output-speed", &s.TokenOutputSpeed},
		{"user-satisfaction-rate", &s.Satisfaction},
		{"average-response-time", &s.ResponseTime},
		{"daily-messages", &s.Messages},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			rows, err := session.Statistic(gctx, appID, q.metric, start, end)
			if err != nil {
				log.Printf("Statistics %s unavailable: %v", q.metric, err)
				rows = nil
			}
			if rows == nil {
				rows = []map[string]any{}
			}
			*q.dst = rows
			return nil
		})
	}
	g.Wait()
	return s
}

// AggregateStatistics reduces the daily series into totals and chart points.
func AggregateStatistics(s Series) (models.Statistics, models.ChartData) {
	stats := models.Statistics{
		TotalConversations:     sumField(s.Conversations, "conversation_count"),
		TotalEndUsers:          maxField(s.Terminals, "terminal_count"),
		TotalMessages:          sumField(s.Messages, "message_count"),
		TotalTokens:            sumField(s.TokenCosts, "total_tokens"),
		TotalTokenCost:         sumField(s.TokenCosts, "cost"),
		AvgSessionInteractions: lastField(s.SessionInteractions, "interactions"),
		TokenOutputSpeed:       lastField(s.TokenOutputSpeed, "token_output_speed"),
		UserSatisfactionRate:   lastField(s.Satisfaction, "rate"),
		AvgResponseTime:        lastField(s.ResponseTime, "latency"),
	}
	charts := models.ChartData{
		Conversations:    chart(s.Conversations, "conversation_count"),
		ActiveUsers:      chart(s.Terminals, "terminal_count"),
		TotalMessages:    chart(s.Messages, "message_count"),
		TokenUsage:       chart(s.TokenCosts, "total_tokens"),
		AvgInteractions:  chart(s.SessionInteractions, "interactions"),
		TokenSpeed:       chart(s.TokenOutputSpeed, "token_output_speed"),
		UserSatisfaction: chart(s.Satisfaction, "rate"),
	}
	return stats, charts
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func sumField(rows []map[string]any, field string) float64 {
	var total float64
	for _, r := range rows {
		total += number(r[field])
	}
	return total
}

func maxField(rows []map[string]any, field string) float64 {
	var best float64
	for _, r := range rows {
		if v := number(r[field]); v > best {
			best = v
		}
	}
	return best
}

func lastField(rows []map[string]any, field string) float64 {
	if len(rows) == 0 {
		return 0
	}
	return number(rows[len(rows)-1][field])
}

func chart(rows []map[string]any, field string) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(rows))
	for _, r := range rows {
		date, _ := r["date"].(string)
		points = append(points, models.ChartPoint{Date: chartLabel(date), Value: number(r[field])})
	}
	return points
}

// chartLabel renders "2025-01-02" as "Jan 2".
func chartLabel(date string) string {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("Jan 2")
		}
	}
	return date
}
