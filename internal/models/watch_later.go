package models

// WatchLaterStatus tracks progress through a watch-later item.
type WatchLaterStatus string

const (
	StatusToWatch   WatchLaterStatus = "To-Watch"
	StatusWatching  WatchLaterStatus = "Watching"
	StatusCompleted WatchLaterStatus = "Completed"
)

// WatchLaterPriority orders a user's watch-later list.
type WatchLaterPriority string

const (
	PriorityHigh   WatchLaterPriority = "High"
	PriorityMedium WatchLaterPriority = "Medium"
	PriorityLow    WatchLaterPriority = "Low"
)

// WatchLaterMood is the mood a user associates with a movie.
type WatchLaterMood string

const (
	MoodHappy      WatchLaterMood = "Happy"
	MoodSad        WatchLaterMood = "Sad"
	MoodExcited    WatchLaterMood = "Excited"
	MoodRelaxed    WatchLaterMood = "Relaxed"
	MoodScared     WatchLaterMood = "Scared"
	MoodThoughtful WatchLaterMood = "Thoughtful"
)

// WatchLaterItem is a user's tracked intent to watch a movie.
type WatchLaterItem struct {
	ID         string             `json:"id" db:"id"`
	UserID     string             `json:"userId" db:"user_id"`
	MovieID    int                `json:"movieId" db:"movie_id"`
	MovieTitle string             `json:"movieTitle" db:"movie_title"`
	PosterPath string             `json:"posterPath" db:"poster_path"`
	Status     WatchLaterStatus   `json:"status" db:"status"`
	Priority   WatchLaterPriority `json:"priority" db:"priority"`
	Reason     *string            `json:"reason,omitempty" db:"reason"`
	Tags       []string           `json:"tags" db:"-"`
	Mood       *WatchLaterMood    `json:"mood,omitempty" db:"mood"`
	AddedAt    int64              `json:"addedAt" db:"added_at"`
	Runtime    *int               `json:"runtime,omitempty" db:"runtime"`
}

// AddWatchLaterRequest is the request body for adding a watch-later item.
// Identity, owner and timestamp are always assigned by the server.
type AddWatchLaterRequest struct {
	MovieID    int                `json:"movieId" validate:"required,gt=0"`
	MovieTitle string             `json:"movieTitle" validate:"required,max=500"`
	PosterPath string             `json:"posterPath" validate:"max=500"`
	Status     WatchLaterStatus   `json:"status" validate:"required,oneof=To-Watch Watching Completed"`
	Priority   WatchLaterPriority `json:"priority" validate:"required,oneof=High Medium Low"`
	Reason     *string            `json:"reason" validate:"omitempty,max=1000"`
	Tags       []string           `json:"tags" validate:"omitempty,max=50,dive,max=50"`
	Mood       *WatchLaterMood    `json:"mood" validate:"omitempty,oneof=Happy Sad Excited Relaxed Scared Thoughtful"`
	Runtime    *int               `json:"runtime" validate:"omitempty,gte=0"`
}

// UpdateWatchLaterRequest carries a partial update; nil fields are untouched.
type UpdateWatchLaterRequest struct {
	Status   *WatchLaterStatus   `json:"status" validate:"omitempty,oneof=To-Watch Watching Completed"`
	Priority *WatchLaterPriority `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	Reason   *string             `json:"reason" validate:"omitempty,max=1000"`
	Tags     *[]string           `json:"tags" validate:"omitempty,max=50,dive,max=50"`
	Mood     *WatchLaterMood     `json:"mood" validate:"omitempty,oneof=Happy Sad Excited Relaxed Scared Thoughtful"`
	Runtime  *int                `json:"runtime" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether the update names no field at all.
func (u UpdateWatchLaterRequest) IsEmpty() bool {
	return u.Status == nil && u.Priority == nil && u.Reason == nil &&
		u.Tags == nil && u.Mood == nil && u.Runtime == nil
}
