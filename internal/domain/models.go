package domain

import (
	"image"
	"path"
	"strconv"
	"strings"
)

// PlayerStatus represents the current state of the media player
type PlayerStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlayerStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlayerStatus = "Stopped"
)

// PlaybackKind is the kind of media a session is playing
type PlaybackKind int

const (
	PlaybackUnknown PlaybackKind = iota
	PlaybackAudio
	PlaybackVideo
	PlaybackImage
)

func (k PlaybackKind) String() string {
	switch k {
	case PlaybackAudio:
		return "AUDIO"
	case PlaybackVideo:
		return "VIDEO"
	case PlaybackImage:
		return "IMAGE"
	default:
		return "UNKNOWN"
	}
}

var kindByExtension = map[string]PlaybackKind{
	".mp3": PlaybackAudio, ".flac": PlaybackAudio, ".ogg": PlaybackAudio, ".opus": PlaybackAudio,
	".m4a": PlaybackAudio, ".wav": PlaybackAudio, ".aac": PlaybackAudio,
	".mp4": PlaybackVideo, ".mkv": PlaybackVideo, ".webm": PlaybackVideo, ".avi": PlaybackVideo,
	".mov": PlaybackVideo,
	".jpg": PlaybackImage, ".jpeg": PlaybackImage, ".png": PlaybackImage, ".gif": PlaybackImage,
	".webp": PlaybackImage,
}

// KindFromURL guesses the playback kind from a media URL's file extension
func KindFromURL(mediaURL string) PlaybackKind {
	if mediaURL == "" {
		return PlaybackUnknown
	}
	// Drop query strings from streamed URLs before looking at the extension
	if i := strings.IndexAny(mediaURL, "?#"); i >= 0 {
		mediaURL = mediaURL[:i]
	}
	return kindByExtension[strings.ToLower(path.Ext(mediaURL))]
}

// MediaSession contains information about one media player session
type MediaSession struct {
	// Player is the bus name of the player owning the session
	Player string
	// Title of the currently playing track
	Title string
	// Artist name
	Artist string
	// Album name
	Album string
	// AlbumArtist, empty when the player does not report one
	AlbumArtist string
	// Genres reported for the track
	Genres []string
	// TrackNumber and TrackCount are zero when unknown
	TrackNumber int
	TrackCount  int
	// Subtitle, empty when absent
	Subtitle string
	// ArtUrl is the URL or local path to the album artwork
	ArtUrl string
	// MediaUrl is the location of the media itself
	MediaUrl string
	// Status is the current playback status
	Status PlayerStatus
}

const (
	unknownTitle  = "Unknown Title"
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

// DisplayRecord is the immutable snapshot shown by one toast.
// Zero values mean "absent" for the optional fields.
type DisplayRecord struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genres      []string
	TrackNumber int
	TrackCount  int
	Subtitle    string
	Kind        PlaybackKind
	// Thumbnail is a fixed-size canvas produced by a Thumbnailer
	Thumbnail *image.NRGBA
}

// NewDisplayRecord builds a record from a session, filling in the defaults
// for missing title, artist and album.
func NewDisplayRecord(s MediaSession, thumb *image.NRGBA) DisplayRecord {
	rec := DisplayRecord{
		Title:       orDefault(s.Title, unknownTitle),
		Artist:      orDefault(s.Artist, unknownArtist),
		Album:       orDefault(s.Album, unknownAlbum),
		AlbumArtist: s.AlbumArtist,
		TrackNumber: s.TrackNumber,
		TrackCount:  s.TrackCount,
		Subtitle:    s.Subtitle,
		Kind:        KindFromURL(s.MediaUrl),
		Thumbnail:   thumb,
	}
	if len(s.Genres) > 0 {
		rec.Genres = append([]string(nil), s.Genres...)
	}
	return rec
}

// Clone returns a deep copy so that a window never shares pixels or slices with its producer
func (r DisplayRecord) Clone() DisplayRecord {
	c := r
	if r.Genres != nil {
		c.Genres = append([]string(nil), r.Genres...)
	}
	if r.Thumbnail != nil {
		t := *r.Thumbnail
		t.Pix = append([]uint8(nil), r.Thumbnail.Pix...)
		c.Thumbnail = &t
	}
	return c
}

// Property is one displayable key/value pair of a record
type Property struct {
	Key   string
	Value string
}

// Properties returns the record's displayable fields in a stable order.
// Absent optional fields are omitted.
func (r DisplayRecord) Properties() []Property {
	props := []Property{
		{Key: "Title", Value: r.Title},
		{Key: "Artist", Value: r.Artist},
		{Key: "Album", Value: r.Album},
	}
	if r.AlbumArtist != "" {
		props = append(props, Property{Key: "AlbumArtist", Value: r.AlbumArtist})
	}
	props = append(props, Property{Key: "Genres", Value: strings.Join(r.Genres, ", ")})
	if r.TrackNumber > 0 {
		track := strconv.Itoa(r.TrackNumber)
		if r.TrackCount > 0 {
			track += "/" + strconv.Itoa(r.TrackCount)
		}
		props = append(props, Property{Key: "Track", Value: track})
	}
	if r.Subtitle != "" {
		props = append(props, Property{Key: "Subtitle", Value: r.Subtitle})
	}
	props = append(props, Property{Key: "Kind", Value: r.Kind.String()})
	return props
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// ScreenResolution holds the display dimensions and origin of the primary screen
type ScreenResolution struct {
	X      int
	Y      int
	Width  int
	Height int
}
