package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := InitDB("sqlite", ":memory:", false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepositories(db)
}

func intPtr(v int) *int { return &v }

func createCollection(t *testing.T, repos *Repositories, name string, isDefault bool) *model.Collection {
	t.Helper()
	c := &model.Collection{Name: name, IsDefault: isDefault}
	require.NoError(t, repos.Collection.Create(c))
	return c
}

func createMovie(t *testing.T, repos *Repositories, title string, collectionID int) *model.Movie {
	t.Helper()
	m := &model.Movie{Title: title}
	require.NoError(t, repos.Movie.CreateInCollection(m, collectionID))
	return m
}

func TestCreateImportedMovieWithCredits(t *testing.T) {
	repos := setupTestRepos(t)
	all := createCollection(t, repos, "All", true)

	movie := &model.Movie{
		ExternalID:  intPtr(603),
		Title:       "The Matrix",
		ReleaseDate: time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC),
		Rating:      model.RatingR,
		Poster:      []byte{1, 2, 3},
		PosterType:  "image/jpg",
		Cast: []model.MovieCast{
			{PersonID: 1, Name: "Minor", Popularity: 1},
			{PersonID: 2, Name: "Lead", Popularity: 50},
		},
		Crew: []model.MovieCrew{{PersonID: 9, Name: "Director", Job: "Director", Popularity: 3}},
	}
	require.NoError(t, repos.Movie.CreateInCollection(movie, all.ID))
	assert.NotZero(t, movie.ID)
	assert.Equal(t, 1, movie.Version)

	found, err := repos.Movie.FindByExternalID(603)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, movie.ID, found.ID)

	loaded, err := repos.Movie.FindWithCredits(movie.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Cast, 2)
	assert.Equal(t, "Lead", loaded.Cast[0].Name)
	require.Len(t, loaded.Crew, 1)
	assert.Equal(t, []byte{1, 2, 3}, loaded.Poster)

	ids, err := repos.MovieCollection.MovieIDs(all.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{movie.ID}, ids)

	dup := &model.Movie{ExternalID: intPtr(603), Title: "Again"}
	err = repos.Movie.CreateInCollection(dup, all.ID)
	assert.True(t, errors.Is(err, ErrDuplicate))

	count, err := repos.Movie.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestManualMoviesWithoutExternalID(t *testing.T) {
	repos := setupTestRepos(t)

	createMovie(t, repos, "Home Video", 0)
	createMovie(t, repos, "Another", 0)

	missing, err := repos.Movie.FindByExternalID(0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	movies, err := repos.Movie.ListAll()
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Another", movies[0].Title)
}

func TestMovieUpdateVersioning(t *testing.T) {
	repos := setupTestRepos(t)
	movie := createMovie(t, repos, "Draft", 0)

	edit := *movie
	edit.Title = "Final"
	edit.Poster = []byte("new")
	edit.PosterType = "image/png"
	require.NoError(t, repos.Movie.Update(&edit, false, false))
	assert.Equal(t, 2, edit.Version)

	stored, err := repos.Movie.FindByID(movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", stored.Title)
	assert.Nil(t, stored.Poster)

	stale := *movie
	stale.Title = "Stale"
	err = repos.Movie.Update(&stale, false, false)
	assert.True(t, errors.Is(err, ErrConflict))

	ghost := model.Movie{ID: 999, Version: 1, Title: "Ghost"}
	err = repos.Movie.Update(&ghost, false, false)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repos.Movie.Update(&edit, true, false))
	stored, err = repos.Movie.FindByID(movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), stored.Poster)
	assert.Equal(t, "image/png", stored.PosterType)
}

func TestMovieDeleteCascades(t *testing.T) {
	repos := setupTestRepos(t)
	all := createCollection(t, repos, "All", true)
	favs := createCollection(t, repos, "Favourites", false)

	movie := &model.Movie{
		Title: "Doomed",
		Cast:  []model.MovieCast{{PersonID: 1, Name: "Actor"}},
		Crew:  []model.MovieCrew{{PersonID: 2, Name: "Writer"}},
	}
	require.NoError(t, repos.Movie.CreateInCollection(movie, all.ID))
	require.NoError(t, repos.MovieCollection.Add(movie.ID, favs.ID))

	require.NoError(t, repos.Movie.Delete(movie.ID))

	var casts, crews, links int64
	repos.DB.Model(&model.MovieCast{}).Count(&casts)
	repos.DB.Model(&model.MovieCrew{}).Count(&crews)
	repos.DB.Model(&model.MovieCollection{}).Count(&links)
	assert.Zero(t, casts)
	assert.Zero(t, crews)
	assert.Zero(t, links)

	assert.True(t, errors.Is(repos.Movie.Delete(movie.ID), ErrNotFound))
}

func TestReplaceMembership(t *testing.T) {
	repos := setupTestRepos(t)
	favs := createCollection(t, repos, "Favourites", false)

	a := createMovie(t, repos, "A", favs.ID)
	b := createMovie(t, repos, "B", favs.ID)
	c := createMovie(t, repos, "C", 0)

	ids, err := repos.MovieCollection.MovieIDs(favs.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, b.ID}, ids)

	require.NoError(t, repos.MovieCollection.Replace(favs.ID, []int{c.ID, a.ID, c.ID}))

	var rows []model.MovieCollection
	require.NoError(t, repos.DB.Where("collection_id = ?", favs.ID).Order("sort_order").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, c.ID, rows[0].MovieID)
	assert.Equal(t, 1, rows[0].SortOrder)
	assert.Equal(t, a.ID, rows[1].MovieID)
	assert.Equal(t, 2, rows[1].SortOrder)

	movies, err := repos.MovieCollection.ListMovies(favs.ID)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "C", movies[0].Title)

	notIn, err := repos.Movie.ListNotInCollection(favs.ID)
	require.NoError(t, err)
	require.Len(t, notIn, 1)
	assert.Equal(t, "B", notIn[0].Title)

	require.NoError(t, repos.MovieCollection.Replace(favs.ID, nil))
	ids, err = repos.MovieCollection.MovieIDs(favs.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReplaceMembershipRollsBackOnUnknownMovie(t *testing.T) {
	repos := setupTestRepos(t)
	favs := createCollection(t, repos, "Favourites", false)
	a := createMovie(t, repos, "A", favs.ID)

	err := repos.MovieCollection.Replace(favs.ID, []int{a.ID, 4242})
	assert.True(t, errors.Is(err, ErrNotFound))

	ids, err := repos.MovieCollection.MovieIDs(favs.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID}, ids)

	err = repos.MovieCollection.Replace(777, []int{a.ID})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCollectionDefaultIsProtected(t *testing.T) {
	repos := setupTestRepos(t)
	all := createCollection(t, repos, "All", true)
	favs := createCollection(t, repos, "Favourites", false)

	def, err := repos.Collection.FindDefault()
	require.NoError(t, err)
	assert.Equal(t, all.ID, def.ID)

	custom, err := repos.Collection.ListCustom()
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, favs.ID, custom[0].ID)

	edit := *all
	edit.Name = "Renamed"
	assert.True(t, errors.Is(repos.Collection.Update(&edit), ErrConflict))
	assert.True(t, errors.Is(repos.Collection.Delete(all.ID), ErrConflict))

	stored, err := repos.Collection.FindByID(all.ID)
	require.NoError(t, err)
	assert.Equal(t, "All", stored.Name)
}

func TestCollectionUpdateAndDelete(t *testing.T) {
	repos := setupTestRepos(t)
	favs := createCollection(t, repos, "Favourites", false)
	createCollection(t, repos, "Taken", false)
	movie := createMovie(t, repos, "A", favs.ID)

	edit := *favs
	edit.Name = "Top Picks"
	require.NoError(t, repos.Collection.Update(&edit))
	assert.Equal(t, 2, edit.Version)

	stale := *favs
	stale.Name = "Older"
	assert.True(t, errors.Is(repos.Collection.Update(&stale), ErrConflict))

	clash := edit
	clash.Name = "Taken"
	assert.True(t, errors.Is(repos.Collection.Update(&clash), ErrDuplicate))

	dup := &model.Collection{Name: "Taken"}
	assert.True(t, errors.Is(repos.Collection.Create(dup), ErrDuplicate))

	require.NoError(t, repos.Collection.Delete(favs.ID))
	gone, err := repos.Collection.FindByID(favs.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	stillThere, err := repos.Movie.FindByID(movie.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)

	assert.True(t, errors.Is(repos.Collection.Delete(favs.ID), ErrNotFound))
	assert.True(t, errors.Is(repos.Collection.Update(&edit), ErrNotFound))
}

func TestListWithMoviesOrdered(t *testing.T) {
	repos := setupTestRepos(t)
	all := createCollection(t, repos, "All", true)
	createCollection(t, repos, "Empty", false)

	first := createMovie(t, repos, "Zulu", all.ID)
	second := createMovie(t, repos, "Alpha", all.ID)

	collections, err := repos.Collection.ListWithMovies()
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.True(t, collections[0].IsDefault)
	require.Len(t, collections[0].MovieCollections, 2)
	assert.Equal(t, first.ID, collections[0].MovieCollections[0].Movie.ID)
	assert.Equal(t, second.ID, collections[0].MovieCollections[1].Movie.ID)
	assert.Empty(t, collections[1].MovieCollections)
}

func TestUserCredentials(t *testing.T) {
	repos := setupTestRepos(t)

	_, err := repos.User.Create("Admin@MoviePro.local ", "Admin", "s3cret", "Administrator")
	require.NoError(t, err)

	user, err := repos.User.FindByEmail("admin@moviepro.local")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, repos.User.CheckPassword(user, "s3cret"))
	assert.False(t, repos.User.CheckPassword(user, "wrong"))

	missing, err := repos.User.FindByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
