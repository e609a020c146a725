package dto

type CourseProgress struct {
	Course           string  `json:"course"`
	Evaluations      int     `json:"evaluations"`
	RetentionAverage float64 `json:"retention_average"`
	Latest           float64 `json:"latest"`
}

type ProgressResponse struct {
	Courses []CourseProgress `json:"courses"`
}
