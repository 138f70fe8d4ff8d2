package models

import "encoding/json"

// FavoriteMovie is a snapshot of a movie taken when the user favorited it.
type FavoriteMovie struct {
	UserID  string `json:"userId"`
	MovieID int    `json:"movieId"`
	Movie   Movie  `json:"movie"`
	AddedAt int64  `json:"addedAt"`
}

// FavoriteActor is a snapshot of an actor taken when the user favorited them.
type FavoriteActor struct {
	UserID  string `json:"userId"`
	ActorID int    `json:"actorId"`
	Actor   Actor  `json:"actor"`
	AddedAt int64  `json:"addedAt"`
}

// UserInteraction holds a user's rating, review, notes and watched flag for
// one movie.
type UserInteraction struct {
	UserID      string  `json:"userId" db:"user_id"`
	MovieID     int     `json:"movieId" db:"movie_id"`
	MovieTitle  *string `json:"movieTitle,omitempty" db:"movie_title"`
	PosterPath  *string `json:"posterPath,omitempty" db:"poster_path"`
	ReleaseDate *string `json:"releaseDate,omitempty" db:"release_date"`
	Rating      *int    `json:"rating,omitempty" db:"rating"`
	Review      *string `json:"review,omitempty" db:"review"`
	Notes       *string `json:"notes,omitempty" db:"notes"`
	IsWatched   *bool   `json:"isWatched,omitempty" db:"is_watched"`
	CreatedAt   int64   `json:"createdAt" db:"created_at"`
	UpdatedAt   int64   `json:"updatedAt" db:"updated_at"`
}

// InteractRequest is the body of user.interact. Absent fields leave the
// stored values unchanged.
type InteractRequest struct {
	MovieID     int     `json:"movieId" validate:"required,gt=0"`
	MovieTitle  *string `json:"movieTitle" validate:"omitempty,max=500"`
	PosterPath  *string `json:"posterPath" validate:"omitempty,max=500"`
	ReleaseDate *string `json:"releaseDate" validate:"omitempty,max=20"`
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=10"`
	Review      *string `json:"review" validate:"omitempty,max=2000"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
	IsWatched   *bool   `json:"isWatched"`
}

// Stats summarizes a user's interactions.
type Stats struct {
	TotalWatched  int     `json:"totalWatched"`
	TotalRated    int     `json:"totalRated"`
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

// Preferences are a user's discovery settings.
type Preferences struct {
	Genres   []int  `json:"genres" validate:"omitempty,max=50"`
	Language string `json:"language" validate:"omitempty,max=10"`
	Mood     string `json:"mood" validate:"omitempty,max=30"`
	DarkMode bool   `json:"darkMode"`
}

// DefaultPreferences is what a user without saved preferences gets.
func DefaultPreferences() Preferences {
	return Preferences{Genres: []int{}, Language: "en", DarkMode: true}
}

// Profile is a user's display settings. AvatarConfig is an opaque blob
// owned by the client; AvatarConfigVersion names its schema.
type Profile struct {
	UserID              string          `json:"userId"`
	Name                string          `json:"name"`
	Avatar              string          `json:"avatar"`
	AvatarConfig        json.RawMessage `json:"avatarConfig,omitempty"`
	AvatarConfigVersion int             `json:"avatarConfigVersion"`
	Preferences         Preferences     `json:"preferences"`
	UpdatedAt           int64           `json:"updatedAt"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name                *string         `json:"name" validate:"omitempty,max=100"`
	Avatar              *string         `json:"avatar" validate:"omitempty,max=1000"`
	AvatarConfig        json.RawMessage `json:"avatarConfig"`
	AvatarConfigVersion *int            `json:"avatarConfigVersion" validate:"omitempty,gte=1"`
}

// Collection names used in change events.
const (
	CollectionWatchLater     = "watchLater"
	CollectionMovieFavorites = "movieFavorites"
	CollectionActorFavorites = "actorFavorites"
	CollectionInteractions   = "userInteractions"
	CollectionProfile        = "profile"
)

// Change operations.
const (
	OpAdded   = "added"
	OpChanged = "changed"
	OpRemoved = "removed"
)

// ChangeEvent tells subscribers that one of a user's collections changed.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id"`
	At         int64  `json:"at"`
}
