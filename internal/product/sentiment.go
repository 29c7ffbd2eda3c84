package product

// SentimentResult is the response of a review sentiment request
type SentimentResult struct {
	Success     bool   `json:"success"`
	URL         string `json:"url"`
	Implemented bool   `json:"implemented"`
	Message     string `json:"message"`
}

// AnalyzeSentiment is a placeholder; review analysis is not implemented
func AnalyzeSentiment(url string) SentimentResult {
	return SentimentResult{
		Success:     true,
		URL:         url,
		Implemented: false,
		Message:     "Sentiment analysis feature coming soon",
	}
}
