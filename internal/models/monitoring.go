package models

type MonitoringRequest struct {
	APIKey string `json:"apiKey"`
	Period int    `json:"period"`
}

// ChartPoint is one labelled day, e.g. {"date": "Jan 2", "value": 14}.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type Statistics struct {
	TotalConversations     float64 `json:"total_conversations"`
	TotalEndUsers          float64 `json:"total_end_users"`
	TotalMessages          float64 `json:"total_messages"`
	TotalTokens            float64 `json:"total_tokens"`
	TotalTokenCost         float64 `json:"total_token_cost"`
	AvgSessionInteractions float64 `json:"avg_session_interactions"`
	TokenOutputSpeed       float64 `json:"token_output_speed"`
	UserSatisfactionRate   float64 `json:"user_satisfaction_rate"`
	AvgResponseTime        float64 `json:"avg_response_time"`
}

type ChartData struct {
	Conversations    []ChartPoint `json:"conversations"`
	ActiveUsers      []ChartPoint `json:"activeUsers"`
	TotalMessages    []ChartPoint `json:"totalMessages"`
	TokenUsage       []ChartPoint `json:"tokenUsage"`
	AvgInteractions  []ChartPoint `json:"avgInteractions"`
	TokenSpeed       []ChartPoint `json:"tokenSpeed"`
	UserSatisfaction []ChartPoint `json:"userSatisfaction"`
}

// MonitoringReport is the usage report for one app over a date range.
type MonitoringReport struct {
	Success    bool       `json:"success"`
	AppID      string     `json:"appId"`
	Period     int        `json:"period"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	Statistics Statistics `json:"statistics"`
	ChartData  ChartData  `json:"chartData"`
}
