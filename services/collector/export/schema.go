package export

import (
	"poloscraper/lib/scrapers/polo"
)

// Kind says where a column's cell value comes from.
type Kind int

const (
	// KindBlank is a reserved column: empty header, empty cells.
	KindBlank Kind = iota
	// KindField projects a record field.
	KindField
	// KindInstitution repeats the institution label on every row.
	KindInstitution
	// KindTimestamp stamps the run's export time.
	KindTimestamp
)

type Column struct {
	Header string
	Kind   Kind
	Field  polo.Field
}

// Schema is a fixed-position projection of records into rows. Columns
// are positional and the header row always has exactly as many cells as
// every data row, so downstream spreadsheet imports line up.
type Schema struct {
	Name    string
	Columns []Column
}

func field(header string, f polo.Field) Column {
	return Column{Header: header, Kind: KindField, Field: f}
}

func blank() Column {
	return Column{Kind: KindBlank}
}

// CurrentSchema is the 17-column layout today's intake spreadsheet
// expects.
var CurrentSchema = Schema{
	Name: "atual",
	Columns: []Column{
		{Header: "DATA DE ATUALIZAÇÃO", Kind: KindTimestamp},
		field("NOME", polo.FieldName),
		field("CPF", polo.FieldCPF),
		{Header: "UNIDADE", Kind: KindInstitution},
		field("FORMA DE INGRESSO", polo.FieldLinkAdmissionMethod),
		field("DATA MATRÍCULA", polo.FieldEnrollmentDate),
		field("MATRÍCULA", polo.FieldRegistration),
		field("E-MAIL", polo.FieldEmail),
		field("CELULAR FINANCEIRO", polo.FieldBillingPhone),
		field("STATUS", polo.FieldEnrollmentStatus),
		field("REMATRÍCULADO", polo.FieldReenrolled),
		field("DATA REMATI", polo.FieldReenrollmentDate),
		field("HORAS DE EXTENSÃO", polo.FieldExtensionHours),
		field("QTDE DE HORAS COMPLEMENTARES", polo.FieldComplementaryHours),
		field("EMAIL FINANCEIRO", polo.FieldBillingEmail),
		field("SITUAÇÃO ACADÊMICA", polo.FieldAcademicStanding),
		field("MÉTODO DE PROCESSAMENTO", polo.FieldProcessingMethod),
	},
}

// LegacySchema is the 22-column layout of the spreadsheet the intake
// team used before the 2024 template change. Most positions are
// reserved and stay blank.
var LegacySchema = Schema{
	Name: "legado",
	Columns: []Column{
		blank(),
		blank(),
		{Header: "UNIDADE", Kind: KindInstitution},
		field("FORMA DE INGRESSO", polo.FieldLinkAdmissionMethod),
		field("DATA MATRÍCULA", polo.FieldEnrollmentDate),
		field("MATRÍCULA", polo.FieldRegistration),
		blank(),
		blank(),
		blank(),
		blank(),
		blank(),
		blank(),
		field("STATUS", polo.FieldEnrollmentStatus),
		field("REMATRÍCULADO", polo.FieldReenrolled),
		field("DATA REMATI", polo.FieldReenrollmentDate),
		blank(),
		field("HORAS DE EXTENSÃO", polo.FieldExtensionHours),
		field("QTDE DE HORAS COMPLEMENTARES", polo.FieldComplementaryHours),
		blank(),
		blank(),
		blank(),
		blank(),
	},
}

// SchemaByName resolves a configured schema name, defaulting to the
// current layout.
func SchemaByName(name string) Schema {
	if name == LegacySchema.Name {
		return LegacySchema
	}
	return CurrentSchema
}
