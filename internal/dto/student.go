package dto

// StudentRequest defines payload for creating/updating a student. The id comes from the path.
type StudentRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	WeeklyPattern map[string]bool `json:"weekly_pattern"`
	ValidFrom     string          `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil    string          `json:"valid_until"`
	Requirements  []string        `json:"requirements" validate:"dive,required"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Search      string `form:"search"`
	Day         string `form:"day"`
	Requirement string `form:"requirement"`
}
