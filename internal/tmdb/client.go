package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onyx/internal/models"
)

// Client is the TMDB API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- TMDB Response Types ----

// MovieList is the paged movie response shared by list, search and
// discover endpoints.
type MovieList struct {
	Page         int            `json:"page"`
	Results      []models.Movie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// PersonList is the paged person response.
type PersonList struct {
	Page    int            `json:"page"`
	Results []models.Actor `json:"results"`
}

// Video is one entry of a movie's videos.
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// VideoList is the movie/{id}/videos response.
type VideoList struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// Credits is the movie/{id}/credits response.
type Credits struct {
	ID   int                 `json:"id"`
	Cast []models.CastMember `json:"cast"`
}

// PersonCredits is the person/{id}/movie_credits response.
type PersonCredits struct {
	ID   int            `json:"id"`
	Cast []models.Movie `json:"cast"`
}

// PersonDetail is the subset of person/{id} we read.
type PersonDetail struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PlaceOfBirth string `json:"place_of_birth"`
}

// ---- Client Methods ----

// PopularMovies fetches the current popular movies.
func (c *Client) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	var result MovieList
	if err := c.get(ctx, "/movie/popular", nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// SearchMovies runs a free-text movie search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	var result MovieList
	if err := c.get(ctx, "/search/movie", url.Values{"query": {query}}, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetMovieDetail fetches detailed movie info.
func (c *Client) GetMovieDetail(ctx context.Context, movieID int) (*models.Movie, error) {
	var result models.Movie
	if err := c.get(ctx, "/movie/"+strconv.Itoa(movieID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieVideos fetches the videos attached to a movie.
func (c *Client) MovieVideos(ctx context.Context, movieID int) ([]Video, error) {
	var result VideoList
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", movieID), nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// MovieCredits fetches the cast of a movie in billing order.
func (c *Client) MovieCredits(ctx context.Context, movieID int) ([]models.CastMember, error) {
	var result Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil, &result); err != nil {
		return nil, err
	}
	return result.Cast, nil
}

// SimilarMovies fetches movies similar to the given one.
func (c *Client) SimilarMovies(ctx context.Context, movieID int) ([]models.Movie, error) {
	var result MovieList
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/similar", movieID), nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// DiscoverByGenre fetches movies tagged with a genre.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int) ([]models.Movie, error) {
	var result MovieList
	params := url.Values{"with_genres": {strconv.Itoa(genreID)}}
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// DiscoverByLanguage fetches the first page of the most popular movies
// originally made in the given language.
func (c *Client) DiscoverByLanguage(ctx context.Context, language string) ([]models.Movie, error) {
	var result MovieList
	params := url.Values{
		"with_original_language": {language},
		"sort_by":                {"popularity.desc"},
		"page":                   {"1"},
	}
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// PopularPeople fetches the current popular people.
func (c *Client) PopularPeople(ctx context.Context) ([]models.Actor, error) {
	var result PersonList
	if err := c.get(ctx, "/person/popular", nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// SearchPeople runs a free-text person search.
func (c *Client) SearchPeople(ctx context.Context, query string) ([]models.Actor, error) {
	var result PersonList
	if err := c.get(ctx, "/search/person", url.Values{"query": {query}}, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetPersonDetail fetches a person's details.
func (c *Client) GetPersonDetail(ctx context.Context, personID int) (*PersonDetail, error) {
	var result PersonDetail
	if err := c.get(ctx, "/person/"+strconv.Itoa(personID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PersonMovieCredits fetches the movies a person played in.
func (c *Client) PersonMovieCredits(ctx context.Context, personID int) ([]models.Movie, error) {
	var result PersonCredits
	if err := c.get(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), nil, &result); err != nil {
		return nil, err
	}
	return result.Cast, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	slog.Debug("fetching TMDB", "path", path)
	params.Set("api_key", c.apiKey)

	resp, err := c.doGet(ctx, c.baseURL+path+"?"+params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}
