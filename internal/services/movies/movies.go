package movies

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	libvalidator "moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

const recentMoviesLimit = 5

type MoviesStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	List(ctx context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error)
	Count(ctx context.Context, filter filters.MovieFilter) (int, error)
	Latest(ctx context.Context, limit int) ([]models.Movie, error)
	Update(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

type MovieService struct {
	log       *slog.Logger
	storage   MoviesStorage
	validator *govalidator.Validate
	now       func() time.Time
}

func New(log *slog.Logger, storage MoviesStorage, validator *govalidator.Validate) *MovieService {
	return &MovieService{
		log:       log,
		storage:   storage,
		validator: validator,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for createdAt and updatedAt.
func (s *MovieService) WithClock(now func() time.Time) *MovieService {
	s.now = now
	return s
}

type Page struct {
	Movies      []models.Movie `json:"movies"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalMovies int            `json:"totalMovies"`
}

func (s *MovieService) List(ctx context.Context, pagination filters.Pagination) (*Page, error) {
	return s.page(ctx, "movies.MovieService.List", filters.MovieFilter{}, pagination)
}

// Search matches movies whose title or any genre contains query, ignoring case.
// An empty query matches every movie.
func (s *MovieService) Search(ctx context.Context, query string, pagination filters.Pagination) (*Page, error) {
	return s.page(ctx, "movies.MovieService.Search", filters.MovieFilter{Query: query}, pagination)
}

// ByGenre matches movies having at least one of the comma separated genres.
func (s *MovieService) ByGenre(ctx context.Context, genresCSV string, pagination filters.Pagination) (*Page, error) {
	genres := splitGenres(genresCSV)
	if len(genres) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"genres": "At least one genre is required"}}
	}
	return s.page(ctx, "movies.MovieService.ByGenre", filters.MovieFilter{Genres: genres}, pagination)
}

// page runs the count and the page query independently, under concurrent
// writes the two may disagree.
func (s *MovieService) page(ctx context.Context, op string, filter filters.MovieFilter, pagination filters.Pagination) (*Page, error) {
	log := s.log.With("op", op, "page", pagination.Page, "limit", pagination.Limit)
	total, err := s.storage.Count(ctx, filter)
	if err != nil {
		log.Error("Error counting movies", "errMsg", err.Error())
		return nil, err
	}
	movies, err := s.storage.List(ctx, filter, pagination)
	if err != nil {
		log.Error("Error listing movies", "errMsg", err.Error())
		return nil, err
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return &Page{
		Movies:      movies,
		CurrentPage: pagination.Page,
		TotalPages:  pagination.TotalPages(total),
		TotalMovies: total,
	}, nil
}

type CreateMovieParams struct {
	Title       string   `json:"title" validate:"required"`
	Year        *int32   `json:"year" validate:"required"`
	Genres      []string `json:"genres"`
	Rating      *float64 `json:"rating" validate:"required"`
	Poster      string   `json:"poster" validate:"required"`
	WatchURL    string   `json:"watchUrl" validate:"required"`
	DownloadURL string   `json:"downloadUrl" validate:"required"`
	Featured    bool     `json:"featured"`
	Pinned      bool     `json:"pinned"`
	Status      string   `json:"status"`
}

func (s *MovieService) Create(ctx context.Context, params CreateMovieParams) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	log := s.log.With("op", op, "title", params.Title)
	if errs := libvalidator.ValidateStruct(s.validator, params); errs != nil {
		log.Info("invalid movie data", "errors", errs)
		return nil, &ValidationError{Fields: errs}
	}
	status := params.Status
	if status == "" {
		status = models.MovieStatusActive
	}
	genres := params.Genres
	if genres == nil {
		genres = []string{}
	}
	now := s.now()
	movie, err := s.storage.Insert(ctx, &models.Movie{
		Title:       params.Title,
		Year:        *params.Year,
		Genres:      genres,
		Rating:      *params.Rating,
		Poster:      params.Poster,
		WatchURL:    params.WatchURL,
		DownloadURL: params.DownloadURL,
		Featured:    params.Featured,
		Pinned:      params.Pinned,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	log.Info("movie created", "id", movie.ID)
	return movie, nil
}

// UpdateMovieParams holds the fields to change, nil fields are left untouched.
type UpdateMovieParams struct {
	Title       *string  `json:"title" validate:"omitnil,min=1"`
	Year        *int32   `json:"year"`
	Genres      []string `json:"genres"`
	Rating      *float64 `json:"rating"`
	Poster      *string  `json:"poster" validate:"omitnil,min=1"`
	WatchURL    *string  `json:"watchUrl" validate:"omitnil,min=1"`
	DownloadURL *string  `json:"downloadUrl" validate:"omitnil,min=1"`
	Featured    *bool    `json:"featured"`
	Pinned      *bool    `json:"pinned"`
	Status      *string  `json:"status" validate:"omitnil,min=1"`
}

func (s *MovieService) Update(ctx context.Context, id int64, params UpdateMovieParams) (*models.Movie, error) {
	const op = "movies.MovieService.Update"
	log := s.log.With("op", op, "id", id)
	if errs := libvalidator.ValidateStruct(s.validator, params); errs != nil {
		log.Info("invalid movie data", "errors", errs)
		return nil, &ValidationError{Fields: errs}
	}
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error("Error getting movie: " + err.Error())
		return nil, err
	}
	params.applyTo(movie)
	movie.UpdatedAt = s.now()
	updatedMovie, err := s.storage.Update(ctx, movie)
	if err != nil {
		// deleted between the read and the write
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error("Error updating movie: " + err.Error())
		return nil, err
	}
	return updatedMovie, nil
}

func (p UpdateMovieParams) applyTo(movie *models.Movie) {
	if p.Title != nil {
		movie.Title = *p.Title
	}
	if p.Year != nil {
		movie.Year = *p.Year
	}
	if p.Genres != nil {
		movie.Genres = p.Genres
	}
	if p.Rating != nil {
		movie.Rating = *p.Rating
	}
	if p.Poster != nil {
		movie.Poster = *p.Poster
	}
	if p.WatchURL != nil {
		movie.WatchURL = *p.WatchURL
	}
	if p.DownloadURL != nil {
		movie.DownloadURL = *p.DownloadURL
	}
	if p.Featured != nil {
		movie.Featured = *p.Featured
	}
	if p.Pinned != nil {
		movie.Pinned = *p.Pinned
	}
	if p.Status != nil {
		movie.Status = *p.Status
	}
}

func (s *MovieService) Delete(ctx context.Context, id int64) error {
	const op = "movies.MovieService.Delete"
	log := s.log.With("op", op, "id", id)
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error("Error deleting movie: " + err.Error())
		return err
	}
	log.Info("movie deleted")
	return nil
}

type Stats struct {
	TotalMovies    int `json:"totalMovies"`
	ActiveMovies   int `json:"activeMovies"`
	FeaturedMovies int `json:"featuredMovies"`
	PinnedMovies   int `json:"pinnedMovies"`
}

type Dashboard struct {
	Stats        Stats          `json:"stats"`
	RecentMovies []models.Movie `json:"recentMovies"`
}

func (s *MovieService) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "movies.MovieService.Dashboard"
	log := s.log.With("op", op)
	var stats Stats
	counters := []struct {
		dst    *int
		filter filters.MovieFilter
	}{
		{&stats.TotalMovies, filters.MovieFilter{}},
		{&stats.ActiveMovies, filters.MovieFilter{Status: models.MovieStatusActive}},
		{&stats.FeaturedMovies, filters.MovieFilter{Featured: filters.Bool(true)}},
		{&stats.PinnedMovies, filters.MovieFilter{Pinned: filters.Bool(true)}},
	}
	for _, c := range counters {
		count, err := s.storage.Count(ctx, c.filter)
		if err != nil {
			log.Error("Error counting movies", "errMsg", err.Error())
			return nil, err
		}
		*c.dst = count
	}
	recent, err := s.storage.Latest(ctx, recentMoviesLimit)
	if err != nil {
		log.Error("Error getting recent movies", "errMsg", err.Error())
		return nil, err
	}
	if recent == nil {
		recent = []models.Movie{}
	}
	return &Dashboard{Stats: stats, RecentMovies: recent}, nil
}

func splitGenres(csv string) []string {
	parts := strings.Split(csv, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}
