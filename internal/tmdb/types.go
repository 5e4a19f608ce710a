package tmdb

// Category 远程列表分类
type Category string

const (
	NowPlaying Category = "now_playing"
	Popular    Category = "popular"
	TopRated   Category = "top_rated"
	Upcoming   Category = "upcoming"
)

// Categories 首页展示顺序
var Categories = []Category{NowPlaying, Popular, TopRated, Upcoming}

// ParseCategory 校验分类字符串
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Label 页面标题
func (c Category) Label() string {
	switch c {
	case NowPlaying:
		return "Now Playing"
	case Popular:
		return "Popular"
	case TopRated:
		return "Top Rated"
	case Upcoming:
		return "Upcoming"
	}
	return string(c)
}

// MovieSearch /movie/{category} 响应
type MovieSearch struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult 列表中的一条
type MovieResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

// MovieDetail /movie/{id}?append_to_response=... 响应
type MovieDetail struct {
	ID           int          `json:"id"`
	IMDbID       string       `json:"imdb_id"`
	Title        string       `json:"title"`
	Tagline      string       `json:"tagline"`
	Overview     string       `json:"overview"`
	Runtime      int          `json:"runtime"`
	ReleaseDate  string       `json:"release_date"`
	VoteAverage  float64      `json:"vote_average"`
	Popularity   float64      `json:"popularity"`
	PosterPath   string       `json:"poster_path"`
	BackdropPath string       `json:"backdrop_path"`
	Genres       []Genre      `json:"genres"`
	Credits      Credits      `json:"credits"`
	Videos       Videos       `json:"videos"`
	Images       Images       `json:"images"`
	ReleaseDates ReleaseDates `json:"release_dates"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Credits struct {
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

// Cast 演员；CastID 是角色分配编号，同一演员多角色时 ID 相同而 CastID 不同
type Cast struct {
	ID                 int     `json:"id"`
	CastID             int     `json:"cast_id"`
	CreditID           string  `json:"credit_id"`
	Name               string  `json:"name"`
	Character          string  `json:"character"`
	KnownForDepartment string  `json:"known_for_department"`
	ProfilePath        string  `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
	Order              int     `json:"order"`
}

type Crew struct {
	ID          int     `json:"id"`
	CreditID    string  `json:"credit_id"`
	Name        string  `json:"name"`
	Department  string  `json:"department"`
	Job         string  `json:"job"`
	ProfilePath string  `json:"profile_path"`
	Popularity  float64 `json:"popularity"`
}

type Videos struct {
	Results []Video `json:"results"`
}

type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type Images struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
}

type Image struct {
	FilePath string `json:"file_path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type ReleaseDates struct {
	Results []ReleaseCountry `json:"results"`
}

type ReleaseCountry struct {
	ISO3166_1    string    `json:"iso_3166_1"`
	ReleaseDates []Release `json:"release_dates"`
}

type Release struct {
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
	Type          int    `json:"type"`
}

// ActorDetail /person/{id} 响应
type ActorDetail struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	Deathday           string  `json:"deathday"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
}
