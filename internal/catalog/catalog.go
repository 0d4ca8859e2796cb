package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/yshirakawa/station-fit/internal/domain"
)

var (
	// ErrUnknownQuestion is returned when an answer references a question id
	// that is not in the catalog.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrUnknownOption is returned when an answer selects an option id that
	// does not belong to the referenced question.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnknownStation is returned when a station id is not in the catalog.
	ErrUnknownStation = errors.New("unknown station")

	// ErrIncompleteStationData marks a station whose feature record failed
	// validation. Such stations are excluded from scoring rather than scored
	// against undefined values.
	ErrIncompleteStationData = errors.New("incomplete station data")
)

// QuestionCatalog holds the immutable, ordered question set loaded at startup
// and indexes it by question and option id.
type QuestionCatalog struct {
	questions []domain.Question
	byID      map[string]int
}

// NewQuestionCatalog validates the question set and builds the id index.
// An invalid question catalog is a deployment error, so validation here is
// all-or-nothing.
func NewQuestionCatalog(questions []domain.Question) (*QuestionCatalog, error) {
	v := validator.New()
	byID := make(map[string]int, len(questions))
	priorityCount := 0

	for i, q := range questions {
		if err := v.Struct(q); err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("question %q: duplicate id", q.ID)
		}
		if !q.Category.IsSubstantive() && q.Category != domain.CategoryPriority {
			return nil, fmt.Errorf("question %q: invalid category %q", q.ID, q.Category)
		}
		if q.Category == domain.CategoryPriority {
			priorityCount++
		}
		byID[q.ID] = i
	}
	if priorityCount > 1 {
		return nil, fmt.Errorf("catalog has %d priority questions, at most 1 allowed", priorityCount)
	}

	return &QuestionCatalog{questions: questions, byID: byID}, nil
}

// Questions returns the ordered question list.
func (c *QuestionCatalog) Questions() []domain.Question {
	return c.questions
}

// Len returns the number of questions in the catalog.
func (c *QuestionCatalog) Len() int {
	return len(c.questions)
}

// Question looks up a question by id.
func (c *QuestionCatalog) Question(id string) (domain.Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Question{}, false
	}
	return c.questions[i], true
}

// Option looks up an option within a question.
func (c *QuestionCatalog) Option(questionID, optionID string) (domain.Option, bool) {
	q, ok := c.Question(questionID)
	if !ok {
		return domain.Option{}, false
	}
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return domain.Option{}, false
}

// StationCatalog holds the stations that passed feature validation, in their
// original (catalog) order. That order is the tie-break for ranking.
type StationCatalog struct {
	stations []domain.Station
	byID     map[string]int
}

// NewStationCatalog validates every station's feature record and keeps only
// complete ones. Validation fails closed per station: an incomplete station is
// dropped with a warning instead of failing the whole catalog.
func NewStationCatalog(stations []domain.Station, logger zerolog.Logger) *StationCatalog {
	v := validator.New()
	kept := make([]domain.Station, 0, len(stations))
	byID := make(map[string]int, len(stations))

	for _, st := range stations {
		if err := validateStation(v, st); err != nil {
			logger.Warn().
				Str("station_id", st.ID).
				Err(err).
				Msg("station excluded from scoring")
			continue
		}
		if _, dup := byID[st.ID]; dup {
			logger.Warn().Str("station_id", st.ID).Msg("duplicate station id, keeping first")
			continue
		}
		byID[st.ID] = len(kept)
		kept = append(kept, st)
	}

	return &StationCatalog{stations: kept, byID: byID}
}

func validateStation(v *validator.Validate, st domain.Station) error {
	if err := v.Struct(st); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteStationData, err)
	}
	return nil
}

// Stations returns the validated stations in catalog order.
func (c *StationCatalog) Stations() []domain.Station {
	return c.stations
}

// Len returns the number of validated stations.
func (c *StationCatalog) Len() int {
	return len(c.stations)
}

// Station looks up a station by id.
func (c *StationCatalog) Station(id string) (domain.Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Station{}, false
	}
	return c.stations[i], true
}
