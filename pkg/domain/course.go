package domain

// Course groups exercises. Exercises keep server order; never re-sort them.
type Course struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

// Exercise is a single assignment inside a course.
type Exercise struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
