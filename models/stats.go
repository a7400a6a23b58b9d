package models

// PlayerStats represents aggregated results for a single owner
type PlayerStats struct {
	TotalGames   int     `json:"total_games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	BestScore    int     `json:"best_score"`
	AverageScore float64 `json:"average_score"`
}

// WinPercentage returns wins as a percentage of games played
func (s *PlayerStats) WinPercentage() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

// PlayerHistory combines recent results with lifetime stats
type PlayerHistory struct {
	Owner   Owner         `json:"owner"`
	Results []*GameResult `json:"results"`
	Stats   *PlayerStats  `json:"stats"`
}
