package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cinewatch/internal/database"
	"cinewatch/models"
)

type fakeMetadata struct {
	movieCalls int
	tvCalls    int
	info       *models.MediaInfo
	err        error
}

func (f *fakeMetadata) MovieInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error) {
	f.movieCalls++
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.ID = tmdbID
	info.MediaType = models.MediaTypeMovie
	return &info, nil
}

func (f *fakeMetadata) TVShowInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error) {
	f.tvCalls++
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.ID = tmdbID
	info.MediaType = models.MediaTypeTV
	return &info, nil
}

func newTestService(t *testing.T) (*Service, *fakeMetadata) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "cinewatch.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	metadata := &fakeMetadata{info: &models.MediaInfo{
		Title:        "Fight Club",
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		ReleaseDate:  "1999-10-15",
		VoteAverage:  8.4,
	}}

	svc := NewService(db)
	svc.SetMetadataService(metadata)
	return svc, metadata
}

func intPtr(v int) *int { return &v }

func movieEvent() *models.UnifiedPlayerEvent {
	return &models.UnifiedPlayerEvent{
		Event:       models.PlayerEventTimeUpdate,
		CurrentTime: 120,
		Duration:    7200,
		MediaID:     models.MediaID("550"),
		MediaType:   models.MediaTypeMovie,
		Season:      intPtr(0),
		Episode:     intPtr(0),
	}
}

func TestSyncNilEvent(t *testing.T) {
	svc, _ := newTestService(t)

	res := svc.Sync(context.Background(), "u1", nil, false)
	if res.Success || res.Message != "No data to save" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestSyncRequiresUser(t *testing.T) {
	svc, metadata := newTestService(t)

	for _, userID := range []string{"", "   "} {
		res := svc.Sync(context.Background(), userID, movieEvent(), false)
		if res.Success {
			t.Fatalf("sync succeeded for user %q", userID)
		}
		if res.Message != "You must be logged in to save history" {
			t.Fatalf("unexpected message: %q", res.Message)
		}
	}
	if metadata.movieCalls != 0 {
		t.Fatalf("metadata fetched for unauthenticated sync")
	}

	records, err := svc.ListRecent(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no rows, got %d", len(records))
	}
}

func TestSyncMovieSuccess(t *testing.T) {
	svc, metadata := newTestService(t)

	res := svc.Sync(context.Background(), "u1", movieEvent(), false)
	if !res.Success || res.Message != "History saved" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if metadata.movieCalls != 1 || metadata.tvCalls != 0 {
		t.Fatalf("unexpected metadata calls: movie=%d tv=%d", metadata.movieCalls, metadata.tvCalls)
	}

	records, err := svc.ListRecent(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 row, got %d", len(records))
	}

	r := records[0]
	if r.MediaID != 550 || r.MediaType != models.MediaTypeMovie {
		t.Fatalf("unexpected identity: %+v", r)
	}
	if r.Season != 0 || r.Episode != 0 {
		t.Fatalf("movie rows should persist season/episode as 0, got %d/%d", r.Season, r.Episode)
	}
	if r.Completed {
		t.Fatalf("completed should be false")
	}
	if r.LastPosition != 120 || r.Duration != 7200 {
		t.Fatalf("unexpected progress: %+v", r)
	}
	if r.Title != "Fight Club" || r.PosterPath != "/poster.jpg" {
		t.Fatalf("metadata not denormalized: %+v", r)
	}
}

func TestSyncUpsertReplacesExisting(t *testing.T) {
	svc, _ := newTestService(t)

	first := movieEvent()
	if res := svc.Sync(context.Background(), "u1", first, false); !res.Success {
		t.Fatalf("first sync failed: %+v", res)
	}

	second := movieEvent()
	second.CurrentTime = 7100
	if res := svc.Sync(context.Background(), "u1", second, true); !res.Success {
		t.Fatalf("second sync failed: %+v", res)
	}

	records, err := svc.ListRecent(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("upsert created new row, have %d", len(records))
	}
	if records[0].LastPosition != 7100 || !records[0].Completed {
		t.Fatalf("latest values not persisted: %+v", records[0])
	}
}

func TestSyncTVRequiresSeasonAndEpisode(t *testing.T) {
	svc, metadata := newTestService(t)

	event := &models.UnifiedPlayerEvent{
		Event:       models.PlayerEventPause,
		CurrentTime: 60,
		Duration:    2600,
		MediaID:     models.MediaID("1399"),
		MediaType:   models.MediaTypeTV,
	}

	res := svc.Sync(context.Background(), "u1", event, false)
	if res.Success || res.Message != "Missing season or episode" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if metadata.tvCalls != 0 {
		t.Fatalf("metadata fetched for rejected event")
	}
}

func TestSyncTVWithExplicitZeroes(t *testing.T) {
	svc, _ := newTestService(t)

	event := &models.UnifiedPlayerEvent{
		Event:       models.PlayerEventPause,
		CurrentTime: 60,
		Duration:    2600,
		MediaID:     models.MediaID("1399"),
		MediaType:   models.MediaTypeTV,
		Season:      intPtr(0),
		Episode:     intPtr(0),
	}

	res := svc.Sync(context.Background(), "u1", event, false)
	if !res.Success {
		t.Fatalf("sync failed: %+v", res)
	}

	records, err := svc.ListRecent(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Season != 0 || records[0].Episode != 0 {
		t.Fatalf("explicit zeroes not persisted: %+v", records)
	}
}

func TestSyncInvalidType(t *testing.T) {
	svc, _ := newTestService(t)

	event := movieEvent()
	event.MediaType = "anime"

	res := svc.Sync(context.Background(), "u1", event, false)
	if res.Success || res.Message != `Invalid content type. Must be "movie" or "tv"` {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestSyncMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	event := movieEvent()
	event.MediaID = ""

	res := svc.Sync(context.Background(), "u1", event, false)
	if res.Success || res.Message != "Missing required fields" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestSyncMetadataFailure(t *testing.T) {
	svc, metadata := newTestService(t)
	metadata.err = errors.New("tmdb unavailable")

	res := svc.Sync(context.Background(), "u1", movieEvent(), false)
	if res.Success || res.Message != "An unexpected error occurred" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestSyncNonNumericMediaID(t *testing.T) {
	svc, _ := newTestService(t)

	event := movieEvent()
	event.MediaID = models.MediaID("tt0137523")

	res := svc.Sync(context.Background(), "u1", event, false)
	if res.Success || res.Message != "Failed to save history" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestListRecentOrderAndLimit(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"1", "2", "3"} {
		event := movieEvent()
		event.MediaID = models.MediaID(id)
		if res := svc.Sync(context.Background(), "u1", event, false); !res.Success {
			t.Fatalf("sync %s failed: %+v", id, res)
		}
	}

	// Touch the oldest row so it becomes the most recent.
	refresh := movieEvent()
	refresh.MediaID = models.MediaID("1")
	if res := svc.Sync(context.Background(), "u1", refresh, false); !res.Success {
		t.Fatalf("refresh failed: %+v", res)
	}

	records, err := svc.ListRecent(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("limit ignored, got %d rows", len(records))
	}
	if records[0].MediaID != 1 {
		t.Fatalf("expected refreshed row first, got %d", records[0].MediaID)
	}
}

func TestListRecentRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ListRecent(context.Background(), "  ", 10); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestLastPosition(t *testing.T) {
	svc, _ := newTestService(t)

	if pos := svc.LastPosition(context.Background(), "u1", 550, models.MediaTypeMovie, 0, 0); pos != 0 {
		t.Fatalf("expected 0 for absent row, got %f", pos)
	}

	if res := svc.Sync(context.Background(), "u1", movieEvent(), false); !res.Success {
		t.Fatalf("sync failed: %+v", res)
	}

	if pos := svc.LastPosition(context.Background(), "u1", 550, models.MediaTypeMovie, 0, 0); pos != 120 {
		t.Fatalf("expected 120, got %f", pos)
	}
	if pos := svc.LastPosition(context.Background(), "", 550, models.MediaTypeMovie, 0, 0); pos != 0 {
		t.Fatalf("expected 0 without a user, got %f", pos)
	}
}
