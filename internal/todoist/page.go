package todoist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/todoist-to-sqlite/internal/store"
)

// Cursor identifies the next page of a paginated collection.
// The zero value means "start of collection" in a request and "no next
// page" in a response.
type Cursor string

// IsZero reports whether the cursor is absent.
func (c Cursor) IsZero() bool {
	return c == ""
}

// Offset interprets the cursor as a numeric offset; the zero cursor is 0.
func (c Cursor) Offset() (int, error) {
	if c.IsZero() {
		return 0, nil
	}
	n, err := strconv.Atoi(string(c))
	if err != nil {
		return 0, fmt.Errorf("cursor %q is not an offset", string(c))
	}
	return n, nil
}

// OffsetCursor returns the cursor for a numeric offset.
func OffsetCursor(offset int) Cursor {
	return Cursor(strconv.Itoa(offset))
}

func (c Cursor) param() *string {
	if c.IsZero() {
		return nil
	}
	s := string(c)
	return &s
}

// Page is one decoded response from the completed endpoint.
type Page struct {
	Items      []store.Record
	Projects   []store.Record
	NextCursor Cursor
}

// Terminal reports whether no further page should be requested:
// the page has no items, or it carries no next cursor.
// Both conditions are checked on every page.
func (p *Page) Terminal() bool {
	return len(p.Items) == 0 || p.NextCursor.IsZero()
}

// decodePage validates the shape {items: [...], projects: {...}, next_cursor: ...}.
func decodePage(body any) (*Page, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(body))
	}

	page := &Page{}

	rawItems, ok := obj["items"]
	if !ok {
		return nil, fmt.Errorf("response has no items field")
	}
	if rawItems != nil {
		list, ok := rawItems.([]any)
		if !ok {
			return nil, fmt.Errorf("items: expected an array, got %s", jsonKind(rawItems))
		}
		items, err := toRecords(list)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		page.Items = items
	}

	if rawProjects := obj["projects"]; rawProjects != nil {
		byID, ok := rawProjects.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("projects: expected an object, got %s", jsonKind(rawProjects))
		}
		keys := make([]string, 0, len(byID))
		for k := range byID {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p, ok := byID[k].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("projects[%q]: expected an object, got %s", k, jsonKind(byID[k]))
			}
			page.Projects = append(page.Projects, store.Record(p))
		}
	}

	switch next := obj["next_cursor"].(type) {
	case nil:
	case string:
		page.NextCursor = Cursor(next)
	case json.Number:
		page.NextCursor = Cursor(next.String())
	default:
		return nil, fmt.Errorf("next_cursor: expected a string or number, got %s", jsonKind(next))
	}

	return page, nil
}

func toRecords(list []any) ([]store.Record, error) {
	records := make([]store.Record, 0, len(list))
	for i, elem := range list {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected an object, got %s", i, jsonKind(elem))
		}
		records = append(records, store.Record(obj))
	}
	return records, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
