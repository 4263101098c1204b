package polo

import (
	"poloscraper/lib/htmlutil"
	"poloscraper/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// label cell -> field, for the "Dados Pessoais" block of the ficha
// acadêmica. Labels outside this vocabulary are ignored.
var personalLabels = map[string]Field{
	"Matrícula:":                   FieldRegistration,
	"Nome:":                        FieldName,
	"Data Nasc:":                   FieldBirthDate,
	"Sexo:":                        FieldSex,
	"CPF:":                         FieldCPF,
	"RG:":                          FieldRG,
	"E-mail:":                      FieldEmail,
	"Celular:":                     FieldCellPhone,
	"Forma de Ingresso:":           FieldAdmissionMethod,
	"Carga Horária Exigida:":       FieldRequiredWorkload,
	"Carga Horária Contabilizada:": FieldAccumulatedWorkload,
	"Curso:":                       FieldCourse,
	"Currículo:":                   FieldCurriculum,
	"Situação:":                    FieldEnrollmentStatus,
}

// ParseFicha turns the ficha acadêmica markup into fields: the
// label/value personal-data pairs, the vínculos acadêmicos row and the
// enrollment-confirmation history. Anything the page lacks is simply
// absent from the result.
func ParseFicha(markup string) FieldMap {
	fields := FieldMap{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fields
	}

	parseLabelValues(doc, fields, personalLabels)
	parseVinculos(doc, fields)
	for f, v := range DeriveConfirmation(ParseConfirmationEvents(doc)) {
		fields.SetIfAbsent(f, v)
	}
	return fields
}

// parseLabelValues pairs td.rotulo cells with their td.descricao
// sibling. Identifier-like values are canonicalized to digits.
func parseLabelValues(doc *goquery.Document, fields FieldMap, vocabulary map[string]Field) {
	doc.Find("td.rotulo").Each(func(_ int, label *goquery.Selection) {
		field, ok := vocabulary[textutil.CleanCell(htmlutil.SpanOrCellText(label))]
		if !ok {
			return
		}
		value := label.NextAllFiltered("td.descricao").First()
		if value.Length() == 0 {
			return
		}
		text := textutil.CleanCell(htmlutil.SpanOrCellText(value))
		if IsIdentifierField(field) {
			text = textutil.Digits(text)
		}
		fields.SetIfAbsent(field, text)
	})
}

// column offsets inside the vínculos acadêmicos row differ between the
// portal's two layouts: the legacy one lays the eight fields out
// contiguously, the current one spreads them with the campus at 4 and
// the admission method at 8.
var legacyVinculoOffsets = map[int]Field{
	0: FieldCampus,
	1: FieldLinkCourse,
	2: FieldLinkStatus,
	3: FieldLinkAdmissionMethod,
	4: FieldEnrollmentDate,
	5: FieldAdmissionYear,
	6: FieldAdmissionTerm,
	7: FieldCurriculumMatrix,
}

func parseVinculos(doc *goquery.Document, fields FieldMap) {
	table := findTitledTable(doc, "Vínculos Acadêmicos")
	if table == nil {
		// legacy pages title the table differently but keep the row class
		table = doc.Find("table.tabela_relatorio").First()
		if table.Length() == 0 {
			return
		}
	}

	row := dataRow(table)
	if row == nil {
		return
	}
	cells := row.Find("td")

	if cells.Length() >= 9 {
		fields.SetIfAbsent(FieldCampus, htmlutil.SpanOrCellText(cells.Eq(4)))
		fields.SetIfAbsent(FieldLinkAdmissionMethod, htmlutil.SpanOrCellText(cells.Eq(8)))
		return
	}
	if cells.Length() >= 8 {
		for offset, field := range legacyVinculoOffsets {
			fields.SetIfAbsent(field, textutil.CleanCell(cells.Eq(offset).Text()))
		}
	}
}

// dataRow finds the first data row of a results table: either a tr
// carrying the celula_lista1 class itself or the first tr containing a
// cell with it.
func dataRow(table *goquery.Selection) *goquery.Selection {
	if tr := table.Find("tr.celula_lista1").First(); tr.Length() > 0 {
		return tr
	}
	var found *goquery.Selection
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if tr.Find("td.celula_lista1").Length() > 0 {
			found = tr
			return false
		}
		return true
	})
	return found
}
