package parser

// genreEntry maps a surface form found in user text to its canonical
// genre name in the catalog.
type genreEntry struct {
	key       string
	canonical string
}

// knownGenres is the fixed genre dictionary. Order matters twice: the
// multi-word "science fiction" entry is matched before the single-word
// forms so it is not shadowed by partial matches, and found genres are
// reported in this first-seen order.
var knownGenres = []genreEntry{
	{"science fiction", "Sci-Fi"},
	{"action", "Action"},
	{"adventure", "Adventure"},
	{"animation", "Animation"},
	{"children", "Children"},
	{"comedy", "Comedy"},
	{"crime", "Crime"},
	{"documentary", "Documentary"},
	{"drama", "Drama"},
	{"fantasy", "Fantasy"},
	{"film-noir", "Film-Noir"},
	{"noir", "Film-Noir"},
	{"horror", "Horror"},
	{"musical", "Musical"},
	{"mystery", "Mystery"},
	{"romance", "Romance"},
	{"sci-fi", "Sci-Fi"},
	{"scifi", "Sci-Fi"},
	{"thriller", "Thriller"},
	{"war", "War"},
	{"western", "Western"},
}

// wordNumbers maps spelled-out counts accepted after "top".
var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}
