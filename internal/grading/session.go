package grading

// SessionState is the per-run state owned by whoever sequences the quiz.
// The grader only reads it.
type SessionState struct {
	// CorrectPictureID is the picture expected by the current picture-pick
	// exercise. It must be set before such an exercise is graded and cleared
	// when the run moves on to a different shape.
	CorrectPictureID string
}

func (s *SessionState) SetCorrectPicture(id string) { s.CorrectPictureID = id }

func (s *SessionState) ClearCorrectPicture() { s.CorrectPictureID = "" }
