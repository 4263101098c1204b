package polo

import (
	"poloscraper/lib/htmlutil"
	"poloscraper/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHistorico extracts the two hour totals from the histórico
// oficial: extension hours and complementary hours. The page exists in
// two renditions, a sectioned tb-historico table and an older
// label/value layout, so the section pass runs first and the label scan
// fills whatever is still missing. Confirmation events show up here too
// on some campuses.
func ParseHistorico(markup string) FieldMap {
	fields := FieldMap{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fields
	}

	parseHistoricoSections(doc, fields)
	parseHistoricoLabels(doc, fields)
	for f, v := range DeriveConfirmation(ParseConfirmationEvents(doc)) {
		fields.SetIfAbsent(f, v)
	}
	return fields
}

// parseHistoricoSections walks table#tb-historico, partitioning its
// rows by the td.titulo_tabela section headings. Inside the EXTENSÃO
// section the hour count sits at offset 2 of the celula_lista1 rows,
// inside ATIVIDADES COMPLEMENTARES at offset 3 of the celula_lista2
// ones.
func parseHistoricoSections(doc *goquery.Document, fields FieldMap) {
	table := doc.Find("table#tb-historico").First()
	if table.Length() == 0 {
		return
	}

	section := ""
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if heading := row.Find("td.titulo_tabela"); heading.Length() > 0 {
			section = strings.ToUpper(textutil.CleanCell(htmlutil.SpanOrCellText(heading.First())))
			return
		}
		if row.Find("td.coluna_titulo").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}

		switch {
		case strings.Contains(section, "EXTENSÃO"):
			if htmlutil.HasClass(cells.First(), "celula_lista1") {
				fields.SetIfAbsent(FieldExtensionHours, textutil.CleanCell(cells.Eq(2).Text()))
			}
		case strings.Contains(section, "COMPLEMENTARES"):
			if htmlutil.HasClass(cells.First(), "celula_lista2") {
				fields.SetIfAbsent(FieldComplementaryHours, textutil.CleanCell(cells.Eq(3).Text()))
			}
		}
	})
}

// parseHistoricoLabels is the legacy-layout fallback: hour totals as
// rotulo/descricao pairs.
func parseHistoricoLabels(doc *goquery.Document, fields FieldMap) {
	doc.Find("td.rotulo").Each(func(_ int, label *goquery.Selection) {
		text := textutil.CleanCell(htmlutil.SpanOrCellText(label))

		var field Field
		switch {
		case strings.Contains(text, "Horas de Extensão"):
			field = FieldExtensionHours
		case strings.Contains(text, "Complementares") && strings.Contains(text, "Qtde"):
			field = FieldComplementaryHours
		default:
			return
		}

		value := label.NextAllFiltered("td.descricao").First()
		if value.Length() == 0 {
			return
		}
		fields.SetIfAbsent(field, textutil.CleanCell(htmlutil.SpanOrCellText(value)))
	})
}
