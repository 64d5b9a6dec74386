package content

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	reYouTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	reVimeoID   = regexp.MustCompile(`^[0-9]+$`)
)

// EmbedURL rewrites a video share link into a URL suitable for an iframe.
// It understands youtube.com/watch?v=, youtu.be/, youtube.com/shorts/,
// youtube.com/embed/ and vimeo.com/ links. ok is false when raw is not a
// recognizable video link.
func EmbedURL(raw string) (embed string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segs[0]
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case len(segs) == 1 && segs[0] == "watch":
			id = u.Query().Get("v")
		case len(segs) == 2 && (segs[0] == "embed" || segs[0] == "shorts" || segs[0] == "live"):
			id = segs[1]
		}
	case "vimeo.com":
		if len(segs) >= 1 && reVimeoID.MatchString(segs[len(segs)-1]) {
			return "https://player.vimeo.com/video/" + segs[len(segs)-1], true
		}
		return "", false
	case "player.vimeo.com":
		if len(segs) == 2 && segs[0] == "video" && reVimeoID.MatchString(segs[1]) {
			return "https://player.vimeo.com/video/" + segs[1], true
		}
		return "", false
	default:
		return "", false
	}
	if !reYouTubeID.MatchString(id) {
		return "", false
	}
	return "https://www.youtube.com/embed/" + id, true
}
