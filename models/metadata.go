package models

// MediaInfo holds the display metadata captured from the content provider. It
// is used both for history-record enrichment at write time and for discovery
// listings.
type MediaInfo struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	Adult        bool    `json:"adult"`
	PosterPath   string  `json:"posterPath,omitempty"`
	BackdropPath string  `json:"backdropPath,omitempty"`
	ReleaseDate  string  `json:"releaseDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage"`
	MediaType    string  `json:"mediaType,omitempty"`
}
