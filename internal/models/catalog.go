package models

// Movie is a catalog movie as returned by TMDB list and detail endpoints.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	PosterPath       string  `json:"poster_path"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	Video            bool    `json:"video,omitempty"`
	Adult            bool    `json:"adult,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
}

// Actor is a catalog person. PlaceOfBirth is only set after enrichment.
type Actor struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	ProfilePath  string  `json:"profile_path"`
	KnownFor     []Movie `json:"known_for,omitempty"`
	PlaceOfBirth string  `json:"place_of_birth,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	Character    string  `json:"character,omitempty"`
}

// CastMember is one entry of a movie's credits.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath string  `json:"profile_path"`
	Order       int     `json:"order"`
	Popularity  float64 `json:"popularity,omitempty"`
}

// TrailerResponse wraps a trailer lookup. Key is nil when no trailer exists.
type TrailerResponse struct {
	Key *string `json:"key"`
}

const (
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW200 = "https://image.tmdb.org/t/p/w200"
)
