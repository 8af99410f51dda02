package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
)

func boolPtr(b bool) *bool { return &b }

func testDirectory() *directory.Cache {
	dir := directory.NewCache()
	dir.Replace([]api.Person{
		{
			ID: "p1", FirstName: "Gavin", LastName: "Ensley",
			Email: "gavin@example.com", Phone: "555-0101",
			LeaderAt12: "Marta Reyes", Stage: "Disciple",
		},
		{
			ID: "p2", FirstName: "Lena", LastName: "Okafor",
			Email: "lena@example.com", Phone: "555-0102",
		},
		{
			ID: "p3", FirstName: "Marta", LastName: "Reyes",
			Email: "marta@example.com",
		},
	})
	return dir
}

func TestJoinEntrySnapshotWinsOverDirectory(t *testing.T) {
	dir := testDirectory()

	raw := api.RawEntry{
		PersonID:  "p1",
		FirstName: "Gav", // recorded at action time, must survive the join
		Phone:     "555-9999",
	}
	joined := JoinEntry("ev1", raw, dir)

	require.Equal(t, "Gav", joined.FirstName)
	require.Equal(t, "555-9999", joined.Phone)
	// empty snapshot fields are filled from the directory
	require.Equal(t, "Ensley", joined.LastName)
	require.Equal(t, "gavin@example.com", joined.Email)
	require.Equal(t, "Marta Reyes", joined.LeaderAt12)
}

func TestJoinEntryResolvesByIDThenEmail(t *testing.T) {
	dir := testDirectory()

	byID := JoinEntry("ev1", api.RawEntry{PersonID: "p2"}, dir)
	require.Equal(t, "Lena", byID.FirstName)

	byEmail := JoinEntry("ev1", api.RawEntry{Email: "LENA@example.com"}, dir)
	require.Equal(t, "p2", byEmail.PersonID)
	require.Equal(t, "Okafor", byEmail.LastName)

	unknown := JoinEntry("ev1", api.RawEntry{Email: "nobody@example.com", FirstName: "Guest"}, dir)
	require.Empty(t, unknown.PersonID)
	require.Equal(t, "Guest", unknown.FirstName)
}

func TestSyntheticIDIsDeterministic(t *testing.T) {
	dir := directory.NewCache()
	raw := api.RawEntry{Email: "guest@example.com", FirstName: "Guest", LastName: "One"}

	a := JoinEntry("ev1", raw, dir)
	b := JoinEntry("ev1", raw, dir)
	require.NotEmpty(t, a.ID)
	require.Equal(t, a.ID, b.ID)

	// a different event or record yields a different id
	other := JoinEntry("ev2", raw, dir)
	require.NotEqual(t, a.ID, other.ID)
}

func TestJoinConsolidationResolvesAssignedLeaderEmail(t *testing.T) {
	dir := testDirectory()

	c := JoinConsolidation("ev1", api.RawConsolidation{
		PersonID:   "p2",
		Decision:   "First Time",
		AssignedTo: "marta reyes",
	}, dir)

	require.Equal(t, "Lena Okafor", c.Name)
	require.Equal(t, "lena@example.com", c.Email)
	require.Equal(t, "marta@example.com", c.AssignedEmail)
	require.NotEmpty(t, c.ID)
}

func TestJoinEventsFiltersCellVariantsAndNonGlobal(t *testing.T) {
	dir := directory.NewCache()

	raws := []api.RawEvent{
		{ID: "e1", Name: "Sunday Service", EventType: "service", IsGlobal: boolPtr(true)},
		{ID: "e2", Name: "Cell Group North", EventType: "Cell Meeting", IsGlobal: boolPtr(true)},
		{ID: "e3", Name: "Leaders Retreat", EventType: "retreat"}, // IsGlobal missing
		{ID: "e4", Name: "Prayer Night", EventType: "prayer", IsGlobal: boolPtr(false)},
	}

	events := JoinEvents(raws, dir)
	require.Len(t, events, 1)
	require.Equal(t, "e1", events[0].ID)
}

func TestJoinEventDefaultsAndDateTolerance(t *testing.T) {
	dir := directory.NewCache()

	ev := JoinEvent(api.RawEvent{ID: "e1", EventType: "service", Date: "not-a-date"}, dir)
	require.Equal(t, "Unnamed Event", ev.Name)
	require.Equal(t, EventStatusOpen, ev.Status)
	require.False(t, ev.DateValid)

	dated := JoinEvent(api.RawEvent{ID: "e2", Name: "X", EventType: "service", Date: "2026-08-30"}, dir)
	require.True(t, dated.DateValid)
	require.Equal(t, 2026, dated.Date.Year())
}

func TestTodaysOpenEvents(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{ID: "today-open", Status: EventStatusOpen, Date: now.Add(2 * time.Hour), DateValid: true},
		{ID: "today-closed", Status: EventStatusComplete, Date: now, DateValid: true},
		{ID: "tomorrow", Status: EventStatusOpen, Date: now.AddDate(0, 0, 1), DateValid: true},
		{ID: "undated", Status: EventStatusOpen},
	}

	todays := TodaysOpenEvents(events, now)
	require.Len(t, todays, 1)
	require.Equal(t, "today-open", todays[0].ID)
}
