package models

import (
	"testing"
	"time"
)

func TestTrackStatusValid(t *testing.T) {
	for _, status := range []TrackStatus{StatusMissing, StatusDownloaded, StatusResolvedManual} {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
	}
	for _, status := range []TrackStatus{"", "MISSING", "deleted", "resolved"} {
		if status.Valid() {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}

func TestMissingTrackValidate(t *testing.T) {
	tests := []struct {
		name    string
		track   *MissingTrack
		wantErr bool
	}{
		{"complete record", NewMissingTrack("Title", "Artist", "Album", "Playlist", "pl-1"), false},
		{"album is optional", NewMissingTrack("Title", "Artist", "", "Playlist", "pl-1"), false},
		{"missing title", NewMissingTrack("", "Artist", "", "Playlist", "pl-1"), true},
		{"missing artist", NewMissingTrack("Title", "", "", "Playlist", "pl-1"), true},
		{"missing playlist", NewMissingTrack("Title", "Artist", "", "", "pl-1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("mutated status must stay valid", func(t *testing.T) {
		track := NewMissingTrack("Title", "Artist", "", "Playlist", "pl-1")
		track.SetStatus(TrackStatus("vanished"))
		if err := track.Validate(); err == nil {
			t.Error("expected validation error for unknown status")
		}
	})
}

func TestNewMissingTrackDefaults(t *testing.T) {
	before := time.Now()
	track := NewMissingTrack("Title", "Artist", "", "Playlist", "pl-1")

	if track.Status() != StatusMissing {
		t.Errorf("expected new track to start missing, got %s", track.Status())
	}
	if track.CreatedAt().Before(before.Add(-time.Second)) {
		t.Errorf("unexpected creation time: %s", track.CreatedAt())
	}
	if track.ID() != "" {
		t.Error("ID assignment belongs to the repository, not the constructor")
	}
}

func TestIndexedTrackEmpty(t *testing.T) {
	tests := []struct {
		name     string
		track    IndexedTrack
		expected bool
	}{
		{"both fields empty", IndexedTrack{}, true},
		{"title only", IndexedTrack{TitleClean: "song"}, false},
		{"artist only", IndexedTrack{ArtistClean: "artist"}, false},
		{"both set", IndexedTrack{TitleClean: "song", ArtistClean: "artist"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.Empty(); got != tt.expected {
				t.Errorf("Empty() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
