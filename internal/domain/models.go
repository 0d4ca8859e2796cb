package domain

import "time"

// Category is one of the five preference dimensions a user can express
// interest in. Priority is a pseudo-category used by a single meta-question
// that selects a category-weighting strategy instead of contributing to
// feature preferences.
type Category string

const (
	CategoryHousing    Category = "housing"
	CategoryTransport  Category = "transport"
	CategoryCommercial Category = "commercial"
	CategoryCulture    Category = "culture"
	CategoryPrice      Category = "price"
	CategoryPriority   Category = "priority"
)

// Categories lists the five substantive categories in canonical order.
var Categories = []Category{
	CategoryHousing,
	CategoryTransport,
	CategoryCommercial,
	CategoryCulture,
	CategoryPrice,
}

// IsSubstantive reports whether the category contributes to feature
// preferences (i.e. is not the priority pseudo-category).
func (c Category) IsSubstantive() bool {
	for _, sc := range Categories {
		if c == sc {
			return true
		}
	}
	return false
}

type Question struct {
	ID       string   `json:"id" validate:"required"`
	Category Category `json:"category" validate:"required"`
	Text     string   `json:"text" validate:"required"`
	Options  []Option `json:"options" validate:"min=2,dive"`
	Weight   float64  `json:"weight" validate:"gt=0"`
}

type Option struct {
	ID    string   `json:"id" validate:"required"`
	Text  string   `json:"text" validate:"required"`
	Value float64  `json:"value"`
	Tags  []string `json:"tags,omitempty"`
	// Target is only set on options of the priority meta-question. It names
	// the category the user wants emphasised ("housing", "price", ...) or
	// "none" for a balanced weighting.
	Target string `json:"target,omitempty"`
}

type Answer struct {
	QuestionID string    `json:"question_id"`
	OptionID   string    `json:"option_id"`
	AnsweredAt time.Time `json:"answered_at"`
}

// UserProfile is derived from a session's answers and cached alongside them.
type UserProfile struct {
	Preferences     map[Category]float64 `json:"preferences"`
	CategoryWeights map[Category]float64 `json:"category_weights"`
	Priorities      []string             `json:"priorities"`
	Answers         []Answer             `json:"answers"`
}

type Station struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	NameKana    string          `json:"name_kana,omitempty"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Features    StationFeatures `json:"features" validate:"required"`
	Description string          `json:"description,omitempty"`
}

// StationFeatures holds the per-category integer ratings (nominal 1..5).
// Transport.Connections is a line count and may exceed 5; scoring caps it.
// Price ratings are cost levels: 1 = cheap, 5 = expensive.
type StationFeatures struct {
	Housing    HousingFeatures    `json:"housing" validate:"required"`
	Transport  TransportFeatures  `json:"transport" validate:"required"`
	Commercial CommercialFeatures `json:"commercial" validate:"required"`
	Culture    CultureFeatures    `json:"culture" validate:"required"`
	Price      PriceFeatures      `json:"price" validate:"required"`
}

type HousingFeatures struct {
	RentLevel      int `json:"rent_level" validate:"min=1,max=5"`
	FamilyFriendly int `json:"family_friendly" validate:"min=1,max=5"`
	Quietness      int `json:"quietness" validate:"min=1,max=5"`
}

type TransportFeatures struct {
	Connections    int `json:"connections" validate:"min=1"`
	Frequency      int `json:"frequency" validate:"min=1,max=5"`
	TerminalAccess int `json:"terminal_access" validate:"min=1,max=5"`
}

type CommercialFeatures struct {
	Shopping int `json:"shopping" validate:"min=1,max=5"`
	Dining   int `json:"dining" validate:"min=1,max=5"`
}

type CultureFeatures struct {
	Parks         int `json:"parks" validate:"min=1,max=5"`
	Entertainment int `json:"entertainment" validate:"min=1,max=5"`
	Community     int `json:"community" validate:"min=1,max=5"`
}

type PriceFeatures struct {
	CostOfLiving int `json:"cost_of_living" validate:"min=1,max=5"`
	DiningCost   int `json:"dining_cost" validate:"min=1,max=5"`
}

type Recommendation struct {
	Station     Station     `json:"station"`
	Score       float64     `json:"score"`
	Rank        int         `json:"rank"`
	Explanation Explanation `json:"explanation"`
}

type Explanation struct {
	MatchingFeatures []string `json:"matching_features"`
	Strengths        []string `json:"strengths"`
	Considerations   []string `json:"considerations"`
}
