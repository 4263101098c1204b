package polo

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const fichaFixture = `<html><body>
<table class="tabela_relatorio">
 <tr><th class="titulo_tabela"><span>Dados Pessoais</span></th></tr>
</table>
<table>
 <tr><td class="rotulo">Nome:</td><td class="descricao">Ana Souza</td></tr>
 <tr><td class="rotulo">CPF:</td><td class="descricao">111.111.111-11</td></tr>
 <tr><td class="rotulo">Matrícula:</td><td class="descricao"><span>2023.100200-3</span></td></tr>
 <tr><td class="rotulo">E-mail:</td><td class="descricao">ana@example.com</td></tr>
 <tr><td class="rotulo">Situação:</td><td class="descricao">Matriculado</td></tr>
 <tr><td class="rotulo">Idade:</td><td class="descricao">29</td></tr>
</table>
<table class="tabela_relatorio">
 <tr><th class="titulo_tabela"><span>Vínculos Acadêmicos</span></th></tr>
 <tr class="celula_lista1">
  <td>1</td><td>-</td><td>-</td><td>-</td>
  <td><span>Campus Mooca</span></td>
  <td>-</td><td>-</td><td>-</td>
  <td><span>Transferência</span></td>
 </tr>
</table>
<table class="tabela_relatorio">
 <tr><th class="titulo_tabela">Dados de Confirmação de Matrícula</th></tr>
 <tr><td>Seq</td><td>Processado em</td><td>-</td><td>-</td><td>Tipo</td><td>Confirmado em</td></tr>
 <tr><td>1</td><td>02/02/2023 08:00:00</td><td>-</td><td>-</td><td>Matrícula</td><td>01/02/2023 10:00:00</td></tr>
 <tr><td>2</td><td>05/01/2024 08:00:00</td><td>-</td><td>-</td><td>Rematrícula</td><td>04/01/2024 09:30:00</td></tr>
 <tr><td>3</td><td>06/01/2025 08:00:00</td><td>-</td><td>-</td><td>Rematrícula</td><td>05/01/2025 12:00:00</td></tr>
</table>
</body></html>`

func TestParseFicha(t *testing.T) {
	fields := ParseFicha(fichaFixture)

	require.Equal(t, "Ana Souza", fields.Get(FieldName))
	require.Equal(t, "11111111111", fields.Get(FieldCPF), "identifier values are digits-only")
	require.Equal(t, "20231002003", fields.Get(FieldRegistration))
	require.Equal(t, "ana@example.com", fields.Get(FieldEmail))
	require.Equal(t, "Matriculado", fields.Get(FieldEnrollmentStatus))

	require.Equal(t, "Campus Mooca", fields.Get(FieldCampus))
	require.Equal(t, "Transferência", fields.Get(FieldLinkAdmissionMethod))

	require.Equal(t, "01/02/2023", fields.Get(FieldConfirmedEnrollmentDate))
	require.Equal(t, "Sim", fields.Get(FieldReenrolled))
	require.Equal(t, "05/01/2025", fields.Get(FieldReenrollmentDate))
}

func TestParseFichaIgnoresUnknownLabels(t *testing.T) {
	fields := ParseFicha(fichaFixture)
	for f := range fields {
		require.NotEqual(t, Field("idade"), f)
	}
}

func TestParseFichaLegacyVinculos(t *testing.T) {
	markup := `<table class="tabela_relatorio">
 <tr><th class="titulo_tabela">Vínculos Acadêmicos</th></tr>
 <tr class="celula_lista1">
  <td>Campus Paulista</td><td>Direito</td><td>Ativo</td><td>Vestibular</td>
  <td>15/03/2022</td><td>2022</td><td>1</td><td>2020/1</td>
 </tr>
</table>`

	fields := ParseFicha(markup)
	require.Equal(t, "Campus Paulista", fields.Get(FieldCampus))
	require.Equal(t, "Direito", fields.Get(FieldLinkCourse))
	require.Equal(t, "Vestibular", fields.Get(FieldLinkAdmissionMethod))
	require.Equal(t, "15/03/2022", fields.Get(FieldEnrollmentDate))
	require.Equal(t, "2020/1", fields.Get(FieldCurriculumMatrix))
}

func TestParseHistoricoSections(t *testing.T) {
	markup := `<table id="tb-historico" class="tabela_relatorio">
 <tr><td class="titulo_tabela"><span>ATIVIDADES DE EXTENSÃO</span></td></tr>
 <tr><td class="coluna_titulo">Código</td><td class="coluna_titulo">Atividade</td></tr>
 <tr><td class="celula_lista1">EXT01</td><td>Curso de Verão</td><td>10</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td></tr>
 <tr><td class="titulo_tabela"><span>ATIVIDADES COMPLEMENTARES</span></td></tr>
 <tr><td class="coluna_titulo">Código</td><td class="coluna_titulo">Atividade</td></tr>
 <tr><td class="celula_lista2">AC01</td><td>Palestra</td><td>-</td><td>20</td><td>-</td><td>-</td><td>-</td><td>-</td></tr>
</table>`

	fields := ParseHistorico(markup)
	require.Equal(t, "10", fields.Get(FieldExtensionHours))
	require.Equal(t, "20", fields.Get(FieldComplementaryHours))
}

func TestParseHistoricoLabelFallback(t *testing.T) {
	markup := `<table>
 <tr><td class="rotulo">Horas de Extensão:</td><td class="descricao">12</td></tr>
 <tr><td class="rotulo">Qtde de Horas Complementares:</td><td class="descricao">8</td></tr>
</table>`

	fields := ParseHistorico(markup)
	require.Equal(t, "12", fields.Get(FieldExtensionHours))
	require.Equal(t, "8", fields.Get(FieldComplementaryHours))
}

const financeiroFixture = `<html><body>
<form action="/registro_controle_academico/fichaAcademica.php" method="post">
<table>
 <tr><td>Dados do Aluno</td></tr>
 <tr><td>Nome</td><td>Ana Souza</td></tr>
 <tr><td>Endereço</td><td>Rua A, 1</td></tr>
 <tr><td>Bairro</td><td>Centro</td></tr>
 <tr><td>Cidade</td><td>São Paulo</td></tr>
 <tr><td>CEP</td><td>01000-000</td></tr>
 <tr><td>Telefone</td><td>(11) 3333-0000</td></tr>
 <tr><td>Celular</td><td>(11) 98888-7777</td></tr>
</table>
</form>
<table>
 <tr><td class="rotulo">E-mail de Cobrança:</td><td class="descricao">cobranca@example.com</td></tr>
</table>
<table class="tabela_relatorio">
 <tr><th class="titulo_tabela">Vínculos Acadêmicos</th></tr>
 <tr class="celula_lista1">
  <td>1</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td>
  <td><span>Ativo</span></td>
 </tr>
</table>
<table class="tabela_relatorio">
 <tr><th class="titulo_tabela">Dados de Confirmação de Matrícula</th></tr>
 <tr><td>Seq</td><td>Processado em</td><td>-</td><td>-</td><td>Tipo</td><td>Confirmado em</td></tr>
 <tr><td>1</td><td>02/02/2023 08:00:00</td><td>-</td><td>-</td><td>Matrícula</td><td>01/02/2023 10:00:00</td></tr>
</table>
</body></html>`

func TestParseFinanceiro(t *testing.T) {
	fields := ParseFinanceiro(financeiroFixture)

	require.Equal(t, "(11) 98888-7777", fields.Get(FieldBillingPhone))
	require.Equal(t, "cobranca@example.com", fields.Get(FieldBillingEmail))
	require.Equal(t, "Ativo", fields.Get(FieldAcademicStanding))
	require.Equal(t, "01/02/2023", fields.Get(FieldConfirmedEnrollmentDate))
}

func TestParseFinanceiroEmptyPage(t *testing.T) {
	fields := ParseFinanceiro("<html><body></body></html>")
	require.Empty(t, fields)
}

func eventsDoc(t *testing.T, rows string) *goquery.Document {
	t.Helper()
	markup := `<table class="tabela_relatorio">
 <tr><th class="titulo_tabela">Dados de Confirmação de Matrícula</th></tr>
 <tr><td>Seq</td><td>Processado em</td><td>-</td><td>-</td><td>Tipo</td><td>Confirmado em</td></tr>` +
		rows + `</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func eventRow(kind, confirmed string) string {
	return `<tr><td>x</td><td>01/01/2024 00:00:00</td><td>-</td><td>-</td><td>` + kind + `</td><td>` + confirmed + `</td></tr>`
}

func TestDeriveConfirmationPicksLatestReenrollment(t *testing.T) {
	// rows deliberately out of chronological order
	doc := eventsDoc(t,
		eventRow("Rematrícula", "04/01/2024 09:30:00")+
			eventRow("Rematrícula", "05/01/2025 12:00:00")+
			eventRow("Rematrícula", "03/01/2023 08:00:00"))

	fields := DeriveConfirmation(ParseConfirmationEvents(doc))
	require.Equal(t, "05/01/2025", fields.Get(FieldReenrollmentDate))
	require.Equal(t, "Sim", fields.Get(FieldReenrolled))
}

func TestDeriveConfirmationMalformedNeverWins(t *testing.T) {
	doc := eventsDoc(t,
		eventRow("Rematrícula", "not a date")+
			eventRow("Rematrícula", "03/01/2023 08:00:00"))

	fields := DeriveConfirmation(ParseConfirmationEvents(doc))
	require.Equal(t, "03/01/2023", fields.Get(FieldReenrollmentDate))
}

func TestDeriveConfirmationAllMalformedKeepsFirst(t *testing.T) {
	doc := eventsDoc(t,
		eventRow("Rematrícula", "??")+
			eventRow("Rematrícula", "!!"))

	fields := DeriveConfirmation(ParseConfirmationEvents(doc))
	require.Equal(t, "Sim", fields.Get(FieldReenrolled))
	require.Equal(t, "??", fields.Get(FieldReenrollmentDate), "first event wins when nothing parses")
}

func TestDeriveConfirmationIgnoresOtherEvents(t *testing.T) {
	doc := eventsDoc(t,
		eventRow("Trancamento", "03/01/2023 08:00:00"))

	fields := DeriveConfirmation(ParseConfirmationEvents(doc))
	require.Empty(t, fields.Get(FieldReenrolled))
	require.Empty(t, fields.Get(FieldConfirmedEnrollmentDate))
}

func TestDeriveConfirmationFirstEnrollmentDate(t *testing.T) {
	doc := eventsDoc(t,
		eventRow("Matrícula", "01/02/2023 10:00:00")+
			eventRow("Matrícula", "09/09/2024 10:00:00"))

	fields := DeriveConfirmation(ParseConfirmationEvents(doc))
	require.Equal(t, "01/02/2023", fields.Get(FieldConfirmedEnrollmentDate))
}
