package polo

import (
	"poloscraper/lib/htmlutil"
	"poloscraper/lib/textutil"
	"poloscraper/lib/timezone"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type EventType int

const (
	EventOther EventType = iota
	EventEnrollment
	EventReenrollment
)

func eventTypeOf(cell string) EventType {
	switch textutil.CleanCell(cell) {
	case "Matrícula":
		return EventEnrollment
	case "Rematrícula":
		return EventReenrollment
	}
	return EventOther
}

// Event is one row of the enrollment-confirmation history. Events are
// consumed immediately when deriving fields and never persisted.
type Event struct {
	Type        EventType
	ProcessedAt string
	ConfirmedAt string
}

const timestampLayout = "02/01/2006 15:04:05"

// sentinel far in the past so malformed timestamps never win the
// "most recent" selection against any valid one
var brokenTimestamp = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

func (e Event) confirmedTime() time.Time {
	t, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(e.ConfirmedAt), timezone.Location)
	if err != nil {
		return brokenTimestamp
	}
	return t
}

// ParseConfirmationEvents extracts every data row of the "Dados de
// Confirmação de Matrícula" table: processing timestamp at offset 1,
// event type at 4, confirmation timestamp at 5. The first two rows are
// the section title and the column headers.
func ParseConfirmationEvents(doc *goquery.Document) []Event {
	table := findTitledTable(doc, "Dados de Confirmação de Matrícula")
	if table == nil {
		return nil
	}

	var events []Event
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < 2 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}
		events = append(events, Event{
			Type:        eventTypeOf(cells.Eq(4).Text()),
			ProcessedAt: textutil.CleanCell(cells.Eq(1).Text()),
			ConfirmedAt: textutil.CleanCell(cells.Eq(5).Text()),
		})
	})
	return events
}

// DeriveConfirmation reduces the event list to fields: the first
// enrollment event's confirmation date, and the most recent
// re-enrollment (ties keep the first-encountered event).
func DeriveConfirmation(events []Event) FieldMap {
	fields := FieldMap{}
	if len(events) == 0 {
		return fields
	}

	for _, e := range events {
		if e.Type == EventEnrollment {
			fields.SetIfAbsent(FieldConfirmedEnrollmentDate, textutil.DatePart(e.ConfirmedAt))
			break
		}
	}

	var latest *Event
	var latestTime time.Time
	for i := range events {
		e := events[i]
		if e.Type != EventReenrollment {
			continue
		}
		t := e.confirmedTime()
		if latest == nil || t.After(latestTime) {
			latest = &events[i]
			latestTime = t
		}
	}
	if latest != nil {
		fields[FieldReenrolled] = "Sim"
		fields[FieldReenrollmentDate] = textutil.DatePart(latest.ConfirmedAt)
	}

	return fields
}

// findTitledTable returns the tabela_relatorio whose title heading
// contains the given text, or nil.
func findTitledTable(doc *goquery.Document, title string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table.tabela_relatorio").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		heading := table.Find("th.titulo_tabela").First()
		if heading.Length() == 0 {
			return true
		}
		if strings.Contains(htmlutil.SpanOrCellText(heading), title) {
			found = table
			return false
		}
		return true
	})
	return found
}
