package checkin

import (
	"sort"
	"strings"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
)

// ============================
// 🔎 View state
// One ViewState per projection: main grid plus the three modal lists.
// Changing the search resets the page; changing only the sort keeps it.

type ViewState struct {
	Search     string `json:"search"`
	SortColumn string `json:"sort_column"`
	SortAsc    bool   `json:"sort_asc"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

func NewViewState() ViewState {
	return ViewState{SortColumn: "name", SortAsc: true, PageSize: 25}
}

// SetSearch updates the query and resets pagination to the first page.
func (vs *ViewState) SetSearch(q string) {
	if vs.Search != q {
		vs.Search = q
		vs.Page = 0
	}
}

// SetSort changes the sort column/direction. The page index is
// preserved: the filter has not changed, so the result set size has
// not either.
func (vs *ViewState) SetSort(column string, asc bool) {
	vs.SortColumn = column
	vs.SortAsc = asc
}

func (vs *ViewState) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	vs.Page = page
}

func (vs *ViewState) SetPageSize(size int) {
	if size > 0 {
		vs.PageSize = size
		vs.Page = 0
	}
}

// Projection names accepted by the view-state endpoints.
const (
	ProjectionGrid         = "grid"
	ProjectionPresent      = "present"
	ProjectionNewPeople    = "new_people"
	ProjectionConsolidated = "consolidated"
)

// UpdateView applies a mutation to one projection's view state.
func (e *Engine) UpdateView(projection string, apply func(*ViewState)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	vs, err := e.viewForLocked(projection)
	if err != nil {
		return err
	}
	apply(vs)
	return nil
}

// ViewSnapshot returns a copy of one projection's view state.
func (e *Engine) ViewSnapshot(projection string) (ViewState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	vs, err := e.viewForLocked(projection)
	if err != nil {
		return ViewState{}, err
	}
	return *vs, nil
}

func (e *Engine) viewForLocked(projection string) (*ViewState, error) {
	switch projection {
	case ProjectionGrid:
		return &e.gridView, nil
	case ProjectionPresent:
		return &e.presentView, nil
	case ProjectionNewPeople:
		return &e.newPeopleView, nil
	case ProjectionConsolidated:
		return &e.consolidatedView, nil
	}
	return nil, ErrUnknownProjection
}

// ============================
// 🔍 Search

// searchIndex concatenates every searchable field of a person. The
// grid search matches tokens against this haystack.
func searchIndex(p api.Person) string {
	return strings.ToLower(strings.Join([]string{
		p.FirstName, p.LastName, p.Email, p.Phone,
		p.LeaderAt1, p.LeaderAt12, p.LeaderAt144, p.LeaderAt1728,
		p.Gender, p.Address, p.BirthDate, p.InvitedBy, p.Stage,
		p.FullName(),
	}, " "))
}

// matchesTokens applies AND semantics: every whitespace-separated
// token of the query must appear in the haystack.
func matchesTokens(haystack, query string) bool {
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

// ============================
// 📌 Priority pinning
// A product-specific rule pins one family to the front of search
// results and of the leader-sorted grid. It is supplied as swappable
// functions so it can be replaced or removed without touching the
// sort pipeline.

// GridRow is a main-grid row: a directory person annotated with the
// selected event's presence flags.
type GridRow struct {
	api.Person
	Present bool `json:"present"`
	IsNew   bool `json:"is_new"`
}

// PriorityScorer scores a row against the active search text; higher
// scores sort first. A nil scorer disables search boosting.
type PriorityScorer func(row GridRow, search string) int

// PriorityMatcher reports whether a row matches the pinned priority
// pair used by the leader comparator's first tier. A nil matcher
// disables pinning.
type PriorityMatcher func(row GridRow) bool

// The pinned record: a founding family the product wants surfaced
// first. Flagged for product review; swap the functions to change it.
var (
	pinnedFamilyName = "navarro"
	pinnedFirstNames = map[string]bool{"samuel": true, "ruth": true}
)

// DefaultPriorityMatcher matches the pinned (first, family) pairs.
func DefaultPriorityMatcher(row GridRow) bool {
	if !strings.EqualFold(row.LastName, pinnedFamilyName) {
		return false
	}
	return pinnedFirstNames[strings.ToLower(row.FirstName)]
}

// DefaultPriorityScorer boosts pinned rows when the search text
// mentions the pinned family or one of its first names.
func DefaultPriorityScorer(row GridRow, search string) int {
	q := strings.ToLower(search)
	mentioned := strings.Contains(q, pinnedFamilyName)
	if !mentioned {
		for first := range pinnedFirstNames {
			if strings.Contains(q, first) {
				mentioned = true
				break
			}
		}
	}
	if mentioned && DefaultPriorityMatcher(row) {
		return 1
	}
	return 0
}

// SetPriorityRules swaps the pinning functions; nil disables either.
func (e *Engine) SetPriorityRules(scorer PriorityScorer, matcher PriorityMatcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scorer = scorer
	e.matcher = matcher
}

// ============================
// 📊 Sorting

// leader column names accepted by the grid sort.
var leaderColumns = map[string]bool{
	"leader_at_1": true, "leader_at_12": true, "leader_at_144": true, "leader_at_1728": true,
}

func fieldValue(row GridRow, column string) string {
	switch column {
	case "name":
		return row.FirstName
	case "surname":
		return row.LastName
	case "email":
		return row.Email
	case "phone":
		return row.Phone
	case "leader_at_1":
		return row.LeaderAt1
	case "leader_at_12":
		return row.LeaderAt12
	case "leader_at_144":
		return row.LeaderAt144
	case "leader_at_1728":
		return row.LeaderAt1728
	case "gender":
		return row.Gender
	case "address":
		return row.Address
	case "birth_date":
		return row.BirthDate
	case "invited_by":
		return row.InvitedBy
	case "stage":
		return row.Stage
	default:
		return row.FullName()
	}
}

// compareLeader is the four-tier leader-column comparator:
// pinned priority pair first, then isNew rows, then rows with the
// leader field populated, then locale comparison of the value. The
// tiers hold regardless of sort direction; direction only flips the
// final value comparison. Returns true when a sorts before b.
func compareLeader(a, b GridRow, column string, asc bool, matcher PriorityMatcher) bool {
	if matcher != nil {
		am, bm := matcher(a), matcher(b)
		if am != bm {
			return am
		}
	}
	if a.IsNew != b.IsNew {
		return a.IsNew
	}
	av, bv := strings.ToLower(fieldValue(a, column)), strings.ToLower(fieldValue(b, column))
	if (av != "") != (bv != "") {
		return av != ""
	}
	if asc {
		return av < bv
	}
	return av > bv
}

func compareGeneric(a, b GridRow, column string, asc bool) bool {
	av, bv := strings.ToLower(fieldValue(a, column)), strings.ToLower(fieldValue(b, column))
	if av == bv {
		return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
	}
	if asc {
		return av < bv
	}
	return av > bv
}

// ============================
// 📄 Projections

// GridPage is one page of a projection.
type GridPage struct {
	Rows     []GridRow `json:"rows"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// EntryPage is one page of a modal sub-list.
type EntryPage struct {
	Rows     []Entry `json:"rows"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// ConsolidationPage is one page of the consolidated modal.
type ConsolidationPage struct {
	Rows     []Consolidation `json:"rows"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func pageBounds(total, page, size int) (int, int, int) {
	if size <= 0 {
		size = 25
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= total {
		start = 0
		page = 0
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end, page
}

// BuildMainGrid produces the main grid projection from a directory
// snapshot, presence/new flags and view state. Pure function so the
// same pipeline serves bootstrap, refresh and every re-render.
func BuildMainGrid(people []api.Person, presentIDs, newIDs map[string]bool, vs ViewState, scorer PriorityScorer, matcher PriorityMatcher) GridPage {
	rows := make([]GridRow, 0, len(people))
	for _, p := range people {
		if vs.Search != "" && !matchesTokens(searchIndex(p), vs.Search) {
			continue
		}
		rows = append(rows, GridRow{Person: p, Present: presentIDs[p.ID], IsNew: newIDs[p.ID]})
	}

	if leaderColumns[vs.SortColumn] {
		sort.SliceStable(rows, func(i, j int) bool {
			return compareLeader(rows[i], rows[j], vs.SortColumn, vs.SortAsc, matcher)
		})
	} else {
		sort.SliceStable(rows, func(i, j int) bool {
			return compareGeneric(rows[i], rows[j], vs.SortColumn, vs.SortAsc)
		})
	}

	// Search boost runs after the base sort; stable, so boosted rows
	// keep their relative order and everything else stays put.
	if vs.Search != "" && scorer != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			return scorer(rows[i], vs.Search) > scorer(rows[j], vs.Search)
		})
	}

	total := len(rows)
	start, end, page := pageBounds(total, vs.Page, vs.PageSize)
	return GridPage{Rows: rows[start:end], Total: total, Page: page, PageSize: vs.PageSize}
}

// BuildEntryList produces a modal sub-list page. Each entry is
// re-joined against the live directory on every read so person edits
// reflect immediately inside an already-open modal; snapshot fields
// still win per the precedence rule.
func BuildEntryList(eventID string, entries []Entry, dir *directory.Cache, vs ViewState) EntryPage {
	rows := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		joined := JoinEntry(eventID, rawEntryFromEntry(entry), dir)
		if vs.Search != "" {
			haystack := strings.ToLower(joined.FullName() + " " + joined.Email + " " + joined.Phone)
			if !matchesTokens(haystack, vs.Search) {
				continue
			}
		}
		rows = append(rows, joined)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].FullName()) < strings.ToLower(rows[j].FullName())
	})

	total := len(rows)
	start, end, page := pageBounds(total, vs.Page, vs.PageSize)
	return EntryPage{Rows: rows[start:end], Total: total, Page: page, PageSize: vs.PageSize}
}

// BuildConsolidationList produces the consolidated modal page.
func BuildConsolidationList(eventID string, cs []Consolidation, dir *directory.Cache, vs ViewState) ConsolidationPage {
	rows := make([]Consolidation, 0, len(cs))
	for _, c := range cs {
		joined := JoinConsolidation(eventID, api.RawConsolidation{
			ID: c.ID, PersonID: c.PersonID, Name: c.Name, Email: c.Email,
			Decision: c.Decision, AssignedTo: c.AssignedTo, AssignedEmail: c.AssignedEmail,
			Status: c.Status, Notes: c.Notes, CreatedAt: c.CreatedAt,
		}, dir)
		if vs.Search != "" {
			haystack := strings.ToLower(joined.Name + " " + joined.AssignedTo + " " + joined.Decision)
			if !matchesTokens(haystack, vs.Search) {
				continue
			}
		}
		rows = append(rows, joined)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	total := len(rows)
	start, end, page := pageBounds(total, vs.Page, vs.PageSize)
	return ConsolidationPage{Rows: rows[start:end], Total: total, Page: page, PageSize: vs.PageSize}
}

// ============================
// Engine projection accessors

// MainGrid renders the main grid for the current selection.
func (e *Engine) MainGrid() GridPage {
	e.mu.Lock()
	presentIDs := make(map[string]bool, len(e.rt.present))
	for _, entry := range e.rt.present {
		presentIDs[entry.PersonID] = true
	}
	newIDs := make(map[string]bool, len(e.rt.newPeople))
	for _, entry := range e.rt.newPeople {
		newIDs[entry.PersonID] = true
	}
	vs := e.gridView
	scorer, matcher := e.scorer, e.matcher
	e.mu.Unlock()

	return BuildMainGrid(e.dirSvc.Cache.All(), presentIDs, newIDs, vs, scorer, matcher)
}

// PresentList renders the present-attendees modal.
func (e *Engine) PresentList() EntryPage {
	e.mu.Lock()
	eventID := e.selectedID
	entries := append([]Entry(nil), e.rt.present...)
	vs := e.presentView
	e.mu.Unlock()
	return BuildEntryList(eventID, entries, e.dirSvc.Cache, vs)
}

// NewPeopleList renders the new-people modal.
func (e *Engine) NewPeopleList() EntryPage {
	e.mu.Lock()
	eventID := e.selectedID
	entries := append([]Entry(nil), e.rt.newPeople...)
	vs := e.newPeopleView
	e.mu.Unlock()
	return BuildEntryList(eventID, entries, e.dirSvc.Cache, vs)
}

// ConsolidatedList renders the consolidated-people modal.
func (e *Engine) ConsolidatedList() ConsolidationPage {
	e.mu.Lock()
	eventID := e.selectedID
	cs := append([]Consolidation(nil), e.rt.consolidations...)
	vs := e.consolidatedView
	e.mu.Unlock()
	return BuildConsolidationList(eventID, cs, e.dirSvc.Cache, vs)
}
