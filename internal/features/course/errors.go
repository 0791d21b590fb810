package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrTitleRequired  = errors.New("course title is required")
	ErrNegativePrice  = errors.New("course price cannot be negative")
	ErrNotCourseOwner = errors.New("user does not own this course")
)
