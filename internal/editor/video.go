package editor

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidVideoURL is returned for links that do not name a YouTube video.
var ErrInvalidVideoURL = errors.New("editor: not a youtube video link")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Video is a parsed YouTube link.
type Video struct {
	ID    string
	Start int // seconds
}

// EmbedURL is the iframe source for the video.
func (v Video) EmbedURL() string {
	u := "https://www.youtube.com/embed/" + v.ID
	if v.Start > 0 {
		u += "?start=" + strconv.Itoa(v.Start)
	}
	return u
}

// ParseVideoURL accepts youtu.be short links and youtube.com watch, embed
// and shorts links, with an optional t or start offset ("90", "90s",
// "1m30s").
func ParseVideoURL(raw string) (Video, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %v", ErrInvalidVideoURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	q := u.Query()

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = q.Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	default:
		return Video{}, fmt.Errorf("%w: host %q", ErrInvalidVideoURL, u.Hostname())
	}

	id = strings.Trim(id, "/")
	if !videoIDPattern.MatchString(id) {
		return Video{}, fmt.Errorf("%w: missing video id", ErrInvalidVideoURL)
	}

	start := q.Get("t")
	if start == "" {
		start = q.Get("start")
	}
	return Video{ID: id, Start: parseOffset(start)}, nil
}

func parseOffset(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return int(d / time.Second)
	}
	return 0
}
