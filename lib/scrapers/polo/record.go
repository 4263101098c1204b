package polo

// Field is the closed vocabulary of record fields the portal's pages can
// yield. Keys follow the portal's own terminology so archived rows and
// logs stay legible next to the markup they came from.
type Field string

const (
	FieldCPF                 Field = "cpf"
	FieldName                Field = "nome"
	FieldRegistration        Field = "matricula"
	FieldEnrollmentStatus    Field = "status_matricula"
	FieldEmail               Field = "email"
	FieldBirthDate           Field = "data_nasc"
	FieldSex                 Field = "sexo"
	FieldRG                  Field = "rg"
	FieldCellPhone           Field = "celular"
	FieldAdmissionMethod     Field = "forma_ingresso"
	FieldRequiredWorkload    Field = "carga_horaria_exigida"
	FieldAccumulatedWorkload Field = "carga_horaria_contabilizada"
	FieldCourse              Field = "curso"
	FieldCurriculum          Field = "curriculo"

	// vínculos acadêmicos table
	FieldCampus              Field = "unidade_vinculos"
	FieldLinkCourse          Field = "curso_vinculos"
	FieldLinkStatus          Field = "situacao_vinculos"
	FieldLinkAdmissionMethod Field = "forma_ingresso_vinculos"
	FieldEnrollmentDate      Field = "data_matricula"
	FieldAdmissionYear       Field = "ano_ingresso"
	FieldAdmissionTerm       Field = "periodo_ingresso"
	FieldCurriculumMatrix    Field = "matriz_curricular"

	// histórico + confirmação
	FieldReenrolled              Field = "rematricula_recente"
	FieldReenrollmentDate        Field = "data_ultima_rematricula"
	FieldExtensionHours          Field = "horas_extensao"
	FieldComplementaryHours      Field = "qtde_horas_complementares"
	FieldConfirmedEnrollmentDate Field = "data_matricula_confirmacao"

	// ficha financeira
	FieldBillingEmail     Field = "email_financeiro"
	FieldBillingPhone     Field = "celular_financeiro"
	FieldAcademicStanding Field = "situacao_academica"

	FieldProcessingMethod Field = "metodo_processamento"
)

// identifier-like fields are stored digits-only
func IsIdentifierField(f Field) bool {
	switch f {
	case FieldCPF, FieldRegistration, FieldRG:
		return true
	}
	return false
}

// FieldMap holds the fields one page yielded. An absent key and an
// empty value both mean "no value" to reconciliation.
type FieldMap map[Field]string

func (m FieldMap) Get(f Field) string { return m[f] }

// SetIfAbsent writes the value only when the field has no value yet,
// preserving the first occurrence when a page repeats a label.
func (m FieldMap) SetIfAbsent(f Field, value string) {
	if m[f] == "" && value != "" {
		m[f] = value
	}
}
