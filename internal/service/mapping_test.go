package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	urls []string
	fail map[string]error
}

func (f *fakeImages) EncodeFromURL(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if err := f.fail[url]; err != nil {
		return nil, err
	}
	return []byte("img:" + url), nil
}

func testSettings() config.TMDBSettings {
	return config.TMDBSettings{
		ImageBase:        "https://image.test/t/p",
		VideoBase:        "https://www.youtube.com/watch?v=",
		PosterSize:       "w500",
		BackdropSize:     "original",
		DefaultCastImage: "/static/images/default_cast.svg",
	}
}

func usCertification(certs ...string) tmdb.ReleaseDates {
	rel := make([]tmdb.Release, 0, len(certs))
	for _, c := range certs {
		rel = append(rel, tmdb.Release{Certification: c})
	}
	return tmdb.ReleaseDates{Results: []tmdb.ReleaseCountry{
		{ISO3166_1: "GB", ReleaseDates: []tmdb.Release{{Certification: "15"}}},
		{ISO3166_1: "US", ReleaseDates: rel},
	}}
}

func TestResolveRating(t *testing.T) {
	cases := []struct {
		name  string
		dates tmdb.ReleaseDates
		want  model.Rating
	}{
		{"plain", usCertification("PG"), model.RatingPG},
		{"hyphenated", usCertification("PG-13"), model.RatingPG13},
		{"nc17", usCertification("NC-17"), model.RatingNC17},
		{"lowercase", usCertification("r"), model.RatingR},
		{"skips empty", usCertification("", "", "G"), model.RatingG},
		{"whitespace counts as first", usCertification("", " ", "G"), model.RatingNR},
		{"padded value", usCertification(" PG-13 "), model.RatingPG13},
		{"first non-empty wins", usCertification("", "R", "PG"), model.RatingR},
		{"unparseable", usCertification("TV-MA"), model.RatingNR},
		{"all empty", usCertification("", ""), model.RatingNR},
		{"no us entry", tmdb.ReleaseDates{Results: []tmdb.ReleaseCountry{{ISO3166_1: "DE", ReleaseDates: []tmdb.Release{{Certification: "12"}}}}}, model.RatingNR},
		{"no data", tmdb.ReleaseDates{}, model.RatingNR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveRating(tc.dates))
		})
	}
}

func TestMapMovieDetailScalarsAndImages(t *testing.T) {
	images := &fakeImages{}
	m := NewMapper(testSettings(), images)

	raw := &tmdb.MovieDetail{
		ID:           603,
		Title:        "The Matrix",
		Tagline:      "Welcome to the Real World.",
		Overview:     "A hacker learns the truth.",
		Runtime:      136,
		ReleaseDate:  "1999-03-30",
		VoteAverage:  8.2,
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.PNG",
		Genres:       []tmdb.Genre{{Name: "Action"}, {Name: "Science Fiction"}},
		ReleaseDates: usCertification("R"),
		Videos: tmdb.Videos{Results: []tmdb.Video{
			{Type: "Teaser", Key: "teaser"},
			{Type: " TRAILER ", Key: ""},
			{Type: " trailer ", Key: "vKQi3bBA1y8"},
			{Type: "Trailer", Key: "second"},
		}},
	}

	movie, err := m.MapMovieDetail(context.Background(), raw)
	require.NoError(t, err)

	require.NotNil(t, movie.ExternalID)
	assert.Equal(t, 603, *movie.ExternalID)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, "Welcome to the Real World.", movie.Tagline)
	assert.Equal(t, 136, movie.Runtime)
	assert.Equal(t, 8.2, movie.VoteAverage)
	assert.Equal(t, time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC), movie.ReleaseDate)
	assert.Equal(t, "Action, Science Fiction", movie.Genres)
	assert.Equal(t, model.RatingR, movie.Rating)
	assert.Equal(t, "https://www.youtube.com/watch?v=vKQi3bBA1y8", movie.TrailerURL)

	assert.Equal(t, []string{
		"https://image.test/t/p/w500/poster.jpg",
		"https://image.test/t/p/original/backdrop.PNG",
	}, images.urls)
	assert.Equal(t, []byte("img:https://image.test/t/p/w500/poster.jpg"), movie.Poster)
	assert.Equal(t, "image/jpg", movie.PosterType)
	assert.Equal(t, "image/png", movie.BackdropType)
}

func TestMapMovieDetailAbsentOptionalParts(t *testing.T) {
	images := &fakeImages{}
	m := NewMapper(testSettings(), images)

	movie, err := m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{ID: 1, Title: "Untitled"})
	require.NoError(t, err)

	assert.Empty(t, images.urls)
	assert.Nil(t, movie.Poster)
	assert.Empty(t, movie.PosterType)
	assert.Nil(t, movie.Backdrop)
	assert.Empty(t, movie.BackdropType)
	assert.Empty(t, movie.TrailerURL)
	assert.True(t, movie.ReleaseDate.IsZero())
	assert.Equal(t, model.RatingNR, movie.Rating)
	assert.Empty(t, movie.Cast)
	assert.Empty(t, movie.Crew)
}

func TestMapMovieDetailFallsBackToGallery(t *testing.T) {
	images := &fakeImages{}
	m := NewMapper(testSettings(), images)

	movie, err := m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{
		ID:           2,
		BackdropPath: "/own.jpg",
		Images: tmdb.Images{
			Posters:   []tmdb.Image{{FilePath: ""}, {FilePath: "/alt.png"}},
			Backdrops: []tmdb.Image{{FilePath: "/ignored.jpg"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://image.test/t/p/w500/alt.png",
		"https://image.test/t/p/original/own.jpg",
	}, images.urls)
	assert.Equal(t, "image/png", movie.PosterType)
	assert.Equal(t, "image/jpg", movie.BackdropType)
}

func TestMapMovieDetailFailures(t *testing.T) {
	fetchErr := errors.New("connection reset")
	images := &fakeImages{fail: map[string]error{
		"https://image.test/t/p/original/broken.jpg": fetchErr,
	}}
	m := NewMapper(testSettings(), images)

	movie, err := m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{
		ID: 9, PosterPath: "/ok.jpg", BackdropPath: "/broken.jpg",
	})
	assert.Nil(t, movie)
	assert.True(t, errors.Is(err, ErrMapping))
	assert.True(t, errors.Is(err, fetchErr))
	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 9, me.ExternalID)

	movie, err = m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{ID: 10, ReleaseDate: "30/03/1999"})
	assert.Nil(t, movie)
	assert.True(t, errors.Is(err, ErrMapping))

	movie, err = m.MapMovieDetail(context.Background(), nil)
	assert.Nil(t, movie)
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestMapCastDedupByAssignment(t *testing.T) {
	m := NewMapper(testSettings(), &fakeImages{})

	cast := []tmdb.Cast{
		{ID: 1, CastID: 10, Name: "Low", Character: "A", Popularity: 1},
		{ID: 1, CastID: 10, Name: "High", Character: "A", Popularity: 9, ProfilePath: "/high.jpg"},
		{ID: 2, CastID: 11, Name: "Solo", Character: "B", Popularity: 5},
		{ID: 2, CastID: 12, Name: "Solo", Character: "C", Popularity: 4},
	}

	movie, err := m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{ID: 1, Credits: tmdb.Credits{Cast: cast}})
	require.NoError(t, err)

	require.Len(t, movie.Cast, 3)
	assert.Equal(t, "High", movie.Cast[0].Name)
	assert.Equal(t, 1, movie.Cast[0].PersonID)
	assert.Equal(t, "https://image.test/t/p/w500/high.jpg", movie.Cast[0].ImageURL)
	assert.Equal(t, "B", movie.Cast[1].Character)
	assert.Equal(t, "C", movie.Cast[2].Character)
	assert.Equal(t, "/static/images/default_cast.svg", movie.Cast[1].ImageURL)
}

func TestMapCreditsProperties(t *testing.T) {
	m := NewMapper(testSettings(), &fakeImages{})
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := rng.Intn(60)
		cast := make([]tmdb.Cast, 0, n)
		crew := make([]tmdb.Crew, 0, n)
		for i := 0; i < n; i++ {
			ident := rng.Intn(30)
			pop := float64(rng.Intn(1000)) / 10
			cast = append(cast, tmdb.Cast{ID: i, CastID: ident, Name: fmt.Sprintf("c%d", i), Popularity: pop})
			crew = append(crew, tmdb.Crew{ID: ident, Name: fmt.Sprintf("w%d", i), Job: "Job", Popularity: pop})
		}

		movie, err := m.MapMovieDetail(context.Background(), &tmdb.MovieDetail{
			ID: round, Credits: tmdb.Credits{Cast: cast, Crew: crew},
		})
		require.NoError(t, err)

		bestCast := map[int]float64{}
		for _, c := range cast {
			if p, ok := bestCast[c.CastID]; !ok || c.Popularity > p {
				bestCast[c.CastID] = c.Popularity
			}
		}
		assert.LessOrEqual(t, len(movie.Cast), maxCredits)
		assert.Equal(t, min(len(bestCast), maxCredits), len(movie.Cast))

		castIdent := map[string]int{}
		for _, c := range cast {
			castIdent[c.Name] = c.CastID
		}
		seen := map[int]bool{}
		for i, c := range movie.Cast {
			ident := castIdent[c.Name]
			assert.False(t, seen[ident], "duplicate cast identity %d", ident)
			seen[ident] = true
			assert.Equal(t, bestCast[ident], c.Popularity)
			if i > 0 {
				assert.GreaterOrEqual(t, movie.Cast[i-1].Popularity, c.Popularity)
			}
		}

		bestCrew := map[int]float64{}
		for _, c := range crew {
			if p, ok := bestCrew[c.ID]; !ok || c.Popularity > p {
				bestCrew[c.ID] = c.Popularity
			}
		}
		assert.Equal(t, min(len(bestCrew), maxCredits), len(movie.Crew))
		seen = map[int]bool{}
		for i, c := range movie.Crew {
			assert.False(t, seen[c.PersonID], "duplicate crew identity %d", c.PersonID)
			seen[c.PersonID] = true
			assert.Equal(t, bestCrew[c.PersonID], c.Popularity)
			if i > 0 {
				assert.GreaterOrEqual(t, movie.Crew[i-1].Popularity, c.Popularity)
			}
		}
	}
}

func TestMapActorDetail(t *testing.T) {
	m := NewMapper(testSettings(), &fakeImages{})

	raw := tmdb.ActorDetail{ID: 6384, Name: "Keanu Reeves", Birthday: "1964-09-02", ProfilePath: "/keanu.jpg"}
	actor := m.MapActorDetail(raw)

	assert.Equal(t, "02 Sep, 1964", actor.Birthday)
	assert.Equal(t, "Not Available", actor.Biography)
	assert.Equal(t, "Not Available", actor.PlaceOfBirth)
	assert.Equal(t, "https://image.test/t/p/w500/keanu.jpg", actor.ImageURL)
	assert.Equal(t, "1964-09-02", raw.Birthday)
	assert.Empty(t, raw.Biography)

	actor = m.MapActorDetail(tmdb.ActorDetail{Biography: "Bio", PlaceOfBirth: "Beirut"})
	assert.Equal(t, "Not Available", actor.Birthday)
	assert.Equal(t, "Bio", actor.Biography)
	assert.Equal(t, "Beirut", actor.PlaceOfBirth)
	assert.Equal(t, "/static/images/default_cast.svg", actor.ImageURL)

	actor = m.MapActorDetail(tmdb.ActorDetail{Birthday: "1964"})
	assert.Equal(t, "1964", actor.Birthday)
}

func TestMapSearchResults(t *testing.T) {
	m := NewMapper(testSettings(), &fakeImages{})

	out := m.MapSearchResults(&tmdb.MovieSearch{Results: []tmdb.MovieResult{
		{ID: 1, Title: "A", PosterPath: "/a.jpg", VoteAverage: 7.1},
		{ID: 2, Title: "B"},
	}})
	require.Len(t, out, 2)
	assert.Equal(t, "https://image.test/t/p/w500/a.jpg", out[0].PosterURL)
	assert.Empty(t, out[1].PosterURL)
	assert.Nil(t, m.MapSearchResults(nil))
	assert.True(t, strings.HasPrefix(m.ImageURL("w185", "x.jpg"), "https://image.test/t/p/w185/"))
}
