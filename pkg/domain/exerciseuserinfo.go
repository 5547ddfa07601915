package domain

// ExerciseUserInfo is one student's progress on one exercise. The dashboard is
// its only consumer.
type ExerciseUserInfo struct {
	ID       int64    `json:"id,omitempty"`
	Exercise Exercise `json:"exercise"`
	User     User     `json:"user"`
	Finished bool     `json:"finished"`
}
