// Package players builds the embed source lists the front-end renders for a
// given title. Each provider differs in URL shape and in which capabilities
// it supports; resumable providers get the viewer's last position prefilled.
package players

import (
	"fmt"
)

// Source is one selectable embed player for a title.
type Source struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Recommended bool   `json:"recommended,omitempty"`
	Fast        bool   `json:"fast,omitempty"`
	Ads         bool   `json:"ads,omitempty"`
	Resumable   bool   `json:"resumable,omitempty"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// startAtParam renders the resume position the way the embeds expect: an
// empty value when there is nothing to resume from.
func startAtParam(startAt float64) string {
	if startAt <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", int64(startAt))
}

// MoviePlayers lists the embed sources for a movie.
func (s *Service) MoviePlayers(id int64, startAt float64) []Source {
	at := startAtParam(startAt)

	return []Source{
		{
			Title:       "VidLink",
			Source:      fmt.Sprintf("https://vidlink.pro/movie/%d?player=jw&primaryColor=006fee&secondaryColor=a2a2a2&iconColor=eefdec&autoplay=false&startAt=%s", id, at),
			Recommended: true,
			Fast:        true,
			Ads:         true,
			Resumable:   true,
		},
		{
			Title:       "VidLink 2",
			Source:      fmt.Sprintf("https://vidlink.pro/movie/%d?primaryColor=006fee&autoplay=false&startAt=%s", id, at),
			Recommended: true,
			Fast:        true,
			Ads:         true,
			Resumable:   true,
		},
		{
			Title: "VidKing",
			// VidKing's progress query parameter pins playback at that
			// timestamp, so it is omitted: progress saves but resume does not.
			Source:      fmt.Sprintf("https://www.vidking.net/embed/movie/%d?color=006fee&autoplay=false", id),
			Recommended: true,
			Fast:        true,
			Resumable:   true,
		},
		{
			Title:  "<Embed>",
			Source: fmt.Sprintf("https://embed.su/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "SuperEmbed",
			Source: fmt.Sprintf("https://multiembed.mov/directstream.php?video_id=%d&tmdb=1", id),
			Fast:   true,
			Ads:    true,
		},
		{
			Title:  "FilmKu",
			Source: fmt.Sprintf("https://filmku.stream/embed/%d", id),
			Ads:    true,
		},
		{
			Title:  "NontonGo",
			Source: fmt.Sprintf("https://www.nontongo.win/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "AutoEmbed 1",
			Source: fmt.Sprintf("https://autoembed.co/movie/tmdb/%d", id),
			Fast:   true,
			Ads:    true,
		},
		{
			Title:  "AutoEmbed 2",
			Source: fmt.Sprintf("https://player.autoembed.cc/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "2Embed",
			Source: fmt.Sprintf("https://www.2embed.cc/embed/%d", id),
			Ads:    true,
		},
		{
			Title:  "VidSrc 1",
			Source: fmt.Sprintf("https://vidsrc.xyz/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "VidSrc 2",
			Source: fmt.Sprintf("https://vidsrc.to/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "VidSrc 3",
			Source: fmt.Sprintf("https://vidsrc.icu/embed/movie/%d", id),
			Ads:    true,
		},
		{
			Title:  "VidSrc 4",
			Source: fmt.Sprintf("https://vidsrc.cc/v2/embed/movie/%d?autoPlay=false", id),
			Ads:    true,
		},
		{
			Title:       "VidSrc 5",
			Source:      fmt.Sprintf("https://vidsrc.cc/v3/embed/movie/%d?autoPlay=false", id),
			Recommended: true,
			Fast:        true,
			Ads:         true,
		},
		{
			Title:  "MoviesAPI",
			Source: fmt.Sprintf("https://moviesapi.club/movie/%d", id),
			Ads:    true,
		},
	}
}

// TVShowPlayers lists the embed sources for a TV episode.
func (s *Service) TVShowPlayers(id int64, season, episode int, startAt float64) []Source {
	at := startAtParam(startAt)

	return []Source{
		{
			Title:       "VidLink",
			Source:      fmt.Sprintf("https://vidlink.pro/tv/%d/%d/%d?player=jw&primaryColor=f5a524&secondaryColor=a2a2a2&iconColor=eefdec&autoplay=false&startAt=%s", id, season, episode, at),
			Recommended: true,
			Fast:        true,
			Ads:         true,
			Resumable:   true,
		},
		{
			Title:       "VidLink 2",
			Source:      fmt.Sprintf("https://vidlink.pro/tv/%d/%d/%d?primaryColor=f5a524&autoplay=false&startAt=%s", id, season, episode, at),
			Recommended: true,
			Fast:        true,
			Ads:         true,
			Resumable:   true,
		},
		{
			Title: "VidKing",
			// Same progress parameter issue as the movie embed.
			Source:      fmt.Sprintf("https://www.vidking.net/embed/tv/%d/%d/%d?color=f5a524&autoplay=false", id, season, episode),
			Recommended: true,
			Fast:        true,
			Resumable:   true,
		},
		{
			Title:  "<Embed>",
			Source: fmt.Sprintf("https://embed.su/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "SuperEmbed",
			Source: fmt.Sprintf("https://multiembed.mov/directstream.php?video_id=%d&tmdb=1&s=%d&e=%d", id, season, episode),
			Fast:   true,
			Ads:    true,
		},
		{
			Title:  "FilmKu",
			Source: fmt.Sprintf("https://filmku.stream/embed/series?tmdb=%d&sea=%d&epi=%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "NontonGo",
			Source: fmt.Sprintf("https://www.NontonGo.win/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "AutoEmbed 1",
			Source: fmt.Sprintf("https://autoembed.co/tv/tmdb/%d-%d-%d", id, season, episode),
			Fast:   true,
			Ads:    true,
		},
		{
			Title:  "AutoEmbed 2",
			Source: fmt.Sprintf("https://player.autoembed.cc/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "2Embed",
			Source: fmt.Sprintf("https://www.2embed.cc/embedtv/%d&s=%d&e=%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "VidSrc 1",
			Source: fmt.Sprintf("https://vidsrc.xyz/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "VidSrc 2",
			Source: fmt.Sprintf("https://vidsrc.to/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "VidSrc 3",
			Source: fmt.Sprintf("https://vidsrc.icu/embed/tv/%d/%d/%d", id, season, episode),
			Ads:    true,
		},
		{
			Title:  "VidSrc 4",
			Source: fmt.Sprintf("https://vidsrc.cc/v2/embed/tv/%d/%d/%d?autoPlay=false", id, season, episode),
			Ads:    true,
		},
		{
			Title:       "VidSrc 5",
			Source:      fmt.Sprintf("https://vidsrc.cc/v3/embed/tv/%d/%d/%d?autoPlay=false", id, season, episode),
			Recommended: true,
			Fast:        true,
			Ads:         true,
		},
		{
			Title:  "MoviesAPI",
			Source: fmt.Sprintf("https://moviesapi.club/tv/%d-%d-%d", id, season, episode),
			Ads:    true,
		},
	}
}
