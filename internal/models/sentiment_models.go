package models

type TextInput struct {
	Text string `json:"text"`
}

type BatchTextInput struct {
	Texts []string `json:"texts"`
}

type SentimentResponse struct {
	Text       string  `json:"text"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

type BatchSentimentResponse struct {
	Results        []SentimentResponse `json:"results"`
	TotalProcessed int                 `json:"total_processed"`
}
