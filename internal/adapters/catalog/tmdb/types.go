package tmdb

// Wire types for the themoviedb.org v3 API. Field names follow the API's
// snake_case payloads

// SearchResult is one movie entry from /search/movie
type SearchResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"` // "2006-01-02", may be empty
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

// SearchResponse is the paginated body of /search/movie, ordered by the
// catalog's own relevance
type SearchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// Genre is a movie genre entry
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one actor credit, ordered by billing
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember is one crew credit
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// Credits bundles cast and crew when append_to_response=credits is requested
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Details is the body of /movie/{id}, optionally with credits appended
type Details struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Overview         string   `json:"overview"`
	ReleaseDate      string   `json:"release_date"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	Genres           []Genre  `json:"genres"`
	OriginalLanguage string   `json:"original_language"`
	Runtime          *int     `json:"runtime"`
	Status           string   `json:"status"`
	Tagline          string   `json:"tagline"`
	Homepage         string   `json:"homepage"`
	IMDBID           *string  `json:"imdb_id"`
	Credits          *Credits `json:"credits"`
}

// Cast returns the billed cast, empty when credits were not requested
func (d *Details) Cast() []CastMember {
	if d == nil || d.Credits == nil {
		return nil
	}
	return d.Credits.Cast
}

// Directors returns crew members whose job is Director
func (d *Details) Directors() []CrewMember {
	if d == nil || d.Credits == nil {
		return nil
	}
	var out []CrewMember
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			out = append(out, c)
		}
	}
	return out
}
