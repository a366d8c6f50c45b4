package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"trackdex/internal/models"
	"trackdex/internal/shared"
)

// trackType is the Plex media type code for music tracks.
const trackType = "10"

// DefaultConnectTimeout is deliberately extended: enumerating a catalog of
// hundreds of thousands of rows in a single response is slow.
const DefaultConnectTimeout = 120 * time.Second

// mediaContainer is the envelope of every Plex XML response.
type mediaContainer struct {
	XMLName     xml.Name       `xml:"MediaContainer"`
	Size        int            `xml:"size,attr"`
	TotalSize   int            `xml:"totalSize,attr"`
	Directories []xmlDirectory `xml:"Directory"`
	Tracks      []xmlTrack     `xml:"Track"`
}

type xmlDirectory struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type xmlTrack struct {
	Title   string `xml:"title,attr"`
	Artist  string `xml:"grandparentTitle,attr"`
	Album   string `xml:"parentTitle,attr"`
	Year    int    `xml:"parentYear,attr"`
	AddedAt int64  `xml:"addedAt,attr"`
}

// PlexSource implements Source against a Plex Media Server's XML API.
//
// Requests are authenticated with a token query parameter and throttled by a
// shared rate limiter so bulk enumeration does not starve the server.
type PlexSource struct {
	baseURL     string
	token       string
	libraryName string
	httpClient  *http.Client
	limiter     *rate.Limiter

	sectionKey string // resolved lazily from the library name
}

// PlexOpts configures a PlexSource.
type PlexOpts struct {
	URL            string
	Token          string
	LibraryName    string
	ConnectTimeout time.Duration // defaults to DefaultConnectTimeout
	RateLimit      float64       // requests per second (default: 5)
}

// NewPlexSource creates a PlexSource from the given options.
func NewPlexSource(opts PlexOpts) *PlexSource {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &PlexSource{
		baseURL:     opts.URL,
		token:       opts.Token,
		libraryName: opts.LibraryName,
		httpClient:  &http.Client{Timeout: opts.ConnectTimeout},
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Name returns the backend identifier
func (p *PlexSource) Name() string {
	return "Plex"
}

// Ping verifies connectivity and resolves the configured library section.
func (p *PlexSource) Ping(ctx context.Context) error {
	_, err := p.section(ctx)
	return err
}

// CountTracks asks for a zero-size container, which returns only the
// totalSize attribute without transferring any rows.
func (p *PlexSource) CountTracks(ctx context.Context) (int, error) {
	key, err := p.section(ctx)
	if err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("type", trackType)
	params.Set("X-Plex-Container-Start", "0")
	params.Set("X-Plex-Container-Size", "0")

	container, err := p.get(ctx, fmt.Sprintf("/library/sections/%s/all", key), params)
	if err != nil {
		return 0, err
	}

	return container.TotalSize, nil
}

// ListAllTracks retrieves the entire track listing in a single request.
func (p *PlexSource) ListAllTracks(ctx context.Context) ([]models.CatalogTrack, error) {
	key, err := p.section(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("type", trackType)

	container, err := p.get(ctx, fmt.Sprintf("/library/sections/%s/all", key), params)
	if err != nil {
		return nil, err
	}

	return convertTracks(container.Tracks), nil
}

// ListRecentlyAdded retrieves up to limit tracks, newest additions first.
func (p *PlexSource) ListRecentlyAdded(ctx context.Context, limit int) ([]models.CatalogTrack, error) {
	key, err := p.section(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("type", trackType)
	params.Set("sort", "addedAt:desc")
	params.Set("X-Plex-Container-Start", "0")
	params.Set("X-Plex-Container-Size", strconv.Itoa(limit))

	container, err := p.get(ctx, fmt.Sprintf("/library/sections/%s/all", key), params)
	if err != nil {
		return nil, err
	}

	return convertTracks(container.Tracks), nil
}

// section resolves and caches the section key for the configured library name.
func (p *PlexSource) section(ctx context.Context) (string, error) {
	if p.sectionKey != "" {
		return p.sectionKey, nil
	}

	container, err := p.get(ctx, "/library/sections", nil)
	if err != nil {
		return "", err
	}

	for _, dir := range container.Directories {
		if dir.Type == "artist" && dir.Title == p.libraryName {
			p.sectionKey = dir.Key
			return p.sectionKey, nil
		}
	}

	return "", fmt.Errorf("%w: %q", shared.ErrLibraryNotFound, p.libraryName)
}

// get performs a rate-limited, token-authenticated GET and decodes the XML
// MediaContainer envelope.
func (p *PlexSource) get(ctx context.Context, path string, params url.Values) (*mediaContainer, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogTimeout, err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("X-Plex-Token", p.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %s", shared.ErrCatalogUnavailable, resp.StatusCode, path)
	}

	var container mediaContainer
	if err := xml.NewDecoder(resp.Body).Decode(&container); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return &container, nil
}

// convertTracks maps raw XML rows onto the optional-field CatalogTrack shape.
// Absent year or added-at attributes become nil rather than zero values.
func convertTracks(rows []xmlTrack) []models.CatalogTrack {
	tracks := make([]models.CatalogTrack, 0, len(rows))
	for _, row := range rows {
		track := models.CatalogTrack{
			Title:  row.Title,
			Artist: row.Artist,
			Album:  row.Album,
		}
		if row.Year > 0 {
			year := row.Year
			track.Year = &year
		}
		if row.AddedAt > 0 {
			added := time.Unix(row.AddedAt, 0)
			track.AddedAt = &added
		}
		tracks = append(tracks, track)
	}
	return tracks
}
