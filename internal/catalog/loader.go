package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/yshirakawa/station-fit/internal/domain"
)

// LoadQuestionsFromFile reads the question catalog from a JSON file.
func LoadQuestionsFromFile(path string) ([]domain.Question, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(b, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return questions, nil
}

// LoadStationsFromFile reads the station catalog seed from a JSON file.
func LoadStationsFromFile(path string) ([]domain.Station, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}

	var stations []domain.Station
	if err := json.Unmarshal(b, &stations); err != nil {
		return nil, fmt.Errorf("unmarshal stations: %w", err)
	}
	return stations, nil
}
