package polo

import (
	"poloscraper/lib/htmlutil"
	"poloscraper/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseFinanceiro extracts the billing contact data and the academic
// standing from the ficha financeira. Billing phone and email live in
// the registration form at fixed positions, the standing in the
// "Vínculos Acadêmicos" summary table.
func ParseFinanceiro(markup string) FieldMap {
	fields := FieldMap{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fields
	}

	parseBillingContact(doc, fields)
	parseAcademicStanding(doc, fields)

	for _, e := range ParseConfirmationEvents(doc) {
		if e.Type == EventEnrollment {
			fields.SetIfAbsent(FieldConfirmedEnrollmentDate, textutil.DatePart(e.ConfirmedAt))
			break
		}
	}
	return fields
}

func parseBillingContact(doc *goquery.Document, fields FieldMap) {
	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		if !strings.Contains(form.AttrOr("action", ""), "fichaAcademica.php") {
			return true
		}
		// the phone row sits at a fixed position of the contact block
		rows := form.Find("tr")
		if rows.Length() > 7 {
			cells := rows.Eq(7).Find("td")
			if cells.Length() > 1 {
				fields.SetIfAbsent(FieldBillingPhone, textutil.CleanCell(htmlutil.SpanOrCellText(cells.Eq(1))))
			}
		}
		return false
	})

	doc.Find("td.rotulo").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if !strings.Contains(htmlutil.SpanOrCellText(label), "E-mail") {
			return true
		}
		value := label.NextAllFiltered("td.descricao").First()
		if value.Length() > 0 {
			fields.SetIfAbsent(FieldBillingEmail, textutil.CleanCell(htmlutil.SpanOrCellText(value)))
		}
		return false
	})
}

func parseAcademicStanding(doc *goquery.Document, fields FieldMap) {
	table := findTitledTable(doc, "Vínculos Acadêmicos")
	if table == nil {
		return
	}
	row := dataRow(table)
	if row == nil {
		return
	}
	cells := row.Find("td")
	if cells.Length() > 10 {
		fields.SetIfAbsent(FieldAcademicStanding, htmlutil.SpanOrCellText(cells.Eq(10)))
	}
}
