package radio

// station is one catalog entry with a known-good stream URL.
type station struct {
	ID          string
	Name        string
	URL         string
	Genre       string
	Description string
}

// popularStations is the fallback suggestion order when a query matches
// nothing in the catalog.
var popularStations = []string{"lofi", "jazz", "chill"}

var defaultStations = []station{
	{
		ID:          "lofi",
		Name:        "LoFi Hip Hop Radio 24/7",
		URL:         "https://streams.ilovemusic.de/iloveradio17.mp3",
		Genre:       "lofi",
		Description: "Chill lofi hip hop beats",
	},
	{
		ID:          "jazz",
		Name:        "Smooth Jazz Radio",
		URL:         "https://live.wostreaming.net/direct/ppmedia-smoothjazzflorida",
		Genre:       "jazz",
		Description: "Smooth jazz and contemporary instrumentals",
	},
	{
		ID:          "electronic",
		Name:        "Electronic Radio",
		URL:         "https://streams.ilovemusic.de/iloveradio2.mp3",
		Genre:       "electronic",
		Description: "Electronic and dance music",
	},
	{
		ID:          "classical",
		Name:        "Classical Radio",
		URL:         "https://live.wostreaming.net/direct/classicalfm",
		Genre:       "classical",
		Description: "Classical music and orchestral pieces",
	},
	{
		ID:          "rock",
		Name:        "Classic Rock Radio",
		URL:         "https://streams.ilovemusic.de/iloveradio3.mp3",
		Genre:       "rock",
		Description: "Classic rock hits from the 70s-90s",
	},
	{
		ID:          "pop",
		Name:        "Pop Radio",
		URL:         "https://streams.ilovemusic.de/iloveradio1.mp3",
		Genre:       "pop",
		Description: "Contemporary pop music",
	},
	{
		ID:          "chill",
		Name:        "Chillout Radio",
		URL:         "https://live.wostreaming.net/direct/lounge-radio",
		Genre:       "chill",
		Description: "Relaxing ambient and chillout music",
	},
	{
		ID:          "indie",
		Name:        "Indie Radio",
		URL:         "https://live.wostreaming.net/direct/indierock",
		Genre:       "indie",
		Description: "Independent and alternative music",
	},
}
