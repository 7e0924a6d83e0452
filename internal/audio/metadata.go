// Package audio implements the decoded-sample payload, position tracking,
// and the buffered source iterator that the engine drives.
package audio

import "fmt"

// ChannelLayout classifies a decoded file's channel count for display
// purposes; playback and EQ processing work for any channel count.
type ChannelLayout int

const (
	Mono ChannelLayout = iota
	Stereo
	Unsupported
)

func (c ChannelLayout) String() string {
	switch c {
	case Mono:
		return "Mono"
	case Stereo:
		return "Stereo"
	default:
		return "Unsupported"
	}
}

// ChannelLayoutFromCount maps a decoded channel count to its layout.
func ChannelLayoutFromCount(n int) ChannelLayout {
	switch n {
	case 1:
		return Mono
	case 2:
		return Stereo
	default:
		return Unsupported
	}
}

// SongKey is the closed set of major/minor musical keys a metadata
// producer may optionally attach. The core never computes this (pitch/key
// detection is an explicit Non-goal); it is carried only as a field a
// future metadata producer could populate.
type SongKey int

const (
	SongKeyNone SongKey = iota
	CMaj
	CMin
	CSharpMaj
	CSharpMin
	DMaj
	DMin
	DSharpMaj
	DSharpMin
	EMaj
	EMin
	FMaj
	FMin
	FSharpMaj
	FSharpMin
	GMaj
	GMin
	GSharpMaj
	GSharpMin
	AMaj
	AMin
	ASharpMaj
	ASharpMin
	BMaj
	BMin
)

var songKeyNames = map[SongKey]string{
	CMaj: "C", CMin: "Cm", CSharpMaj: "C#", CSharpMin: "C#m",
	DMaj: "D", DMin: "Dm", DSharpMaj: "D#", DSharpMin: "D#m",
	EMaj: "E", EMin: "Em",
	FMaj: "F", FMin: "Fm", FSharpMaj: "F#", FSharpMin: "F#m",
	GMaj: "G", GMin: "Gm", GSharpMaj: "G#", GSharpMin: "G#m",
	AMaj: "A", AMin: "Am", ASharpMaj: "A#", ASharpMin: "A#m",
	BMaj: "B", BMin: "Bm",
}

func (k SongKey) String() string {
	if s, ok := songKeyNames[k]; ok {
		return s
	}
	return ""
}

// Metadata is the immutable record describing a decoded track.
type Metadata struct {
	Format        string
	SampleRate    int
	NumChannels   int
	ChannelLayout ChannelLayout
	FilePath      string

	Title  string
	Artist string
	Album  string
	Genre  string
	BPM    float64 // 0 means unset
	Key    SongKey

	Duration float64 // seconds

	// Left empty by the core; a future analysis producer may populate them.
	Danceability   *float64
	Acousticness   *float64
	Electronicness *float64
}

// String renders a short human-readable summary block.
func (m Metadata) String() string {
	title := m.Title
	if title == "" {
		title = "Unknown Title"
	}
	artist := m.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	album := m.Album
	if album == "" {
		album = "Unknown Album"
	}
	mins := int(m.Duration) / 60
	secs := int(m.Duration) % 60

	s := fmt.Sprintf("Track:  %s - %s\nAlbum:  %s\nLength: %02d:%02d\nFormat: %s (%.1f kHz, %s)",
		title, artist, album, mins, secs, m.Format, float64(m.SampleRate)/1000, m.ChannelLayout)

	if m.BPM > 0 {
		s += fmt.Sprintf("\nBPM:    %.1f", m.BPM)
		if m.Key != SongKeyNone {
			s += fmt.Sprintf(" | Key: %s", m.Key)
		}
	} else if m.Key != SongKeyNone {
		s += fmt.Sprintf("\nKey:    %s", m.Key)
	}
	return s
}
