package models

import (
	"fmt"
	"time"
)

// TrackStatus is the resolution lifecycle of a missing-track record.
type TrackStatus string

const (
	StatusMissing        TrackStatus = "missing"         // referenced by a playlist, not found locally
	StatusDownloaded     TrackStatus = "downloaded"      // re-found in the index by a later verification pass
	StatusResolvedManual TrackStatus = "resolved_manual" // explicitly linked to a local track by an operator
)

// Valid reports whether s is a known lifecycle status.
func (s TrackStatus) Valid() bool {
	switch s {
	case StatusMissing, StatusDownloaded, StatusResolvedManual:
		return true
	}
	return false
}

// MissingTrack records a playlist-referenced track that failed the match
// engine. Title, artist and album are stored raw (unnormalized) for display.
//
// The triple (title, artist, source playlist title) is unique: the same track
// missing from two different playlists yields two records.
type MissingTrack struct {
	id                  string
	title               string
	artist              string
	album               string
	sourcePlaylistTitle string
	sourcePlaylistID    string
	status              TrackStatus
	addedDate           time.Time
}

// NewMissingTrack creates a MissingTrack in the initial 'missing' state.
// The ID is assigned by the repository on creation.
func NewMissingTrack(title, artist, album, sourcePlaylistTitle, sourcePlaylistID string) *MissingTrack {
	return &MissingTrack{
		title:               title,
		artist:              artist,
		album:               album,
		sourcePlaylistTitle: sourcePlaylistTitle,
		sourcePlaylistID:    sourcePlaylistID,
		status:              StatusMissing,
		addedDate:           time.Now(),
	}
}

func (m *MissingTrack) ID() string                  { return m.id }
func (m *MissingTrack) Title() string               { return m.title }
func (m *MissingTrack) Artist() string              { return m.artist }
func (m *MissingTrack) Album() string               { return m.album }
func (m *MissingTrack) SourcePlaylistTitle() string { return m.sourcePlaylistTitle }
func (m *MissingTrack) SourcePlaylistID() string    { return m.sourcePlaylistID }
func (m *MissingTrack) Status() TrackStatus         { return m.status }
func (m *MissingTrack) CreatedAt() time.Time        { return m.addedDate }

func (m *MissingTrack) SetID(id string)              { m.id = id }
func (m *MissingTrack) SetStatus(status TrackStatus) { m.status = status }
func (m *MissingTrack) SetCreatedAt(added time.Time) { m.addedDate = added }

// Validate checks that the record satisfies the ledger's invariants.
func (m *MissingTrack) Validate() error {
	if m.title == "" {
		return fmt.Errorf("missing track requires a title")
	}
	if m.artist == "" {
		return fmt.Errorf("missing track requires an artist")
	}
	if m.sourcePlaylistTitle == "" {
		return fmt.Errorf("missing track requires a source playlist title")
	}
	if !m.status.Valid() {
		return fmt.Errorf("invalid status: %s", m.status)
	}
	return nil
}
