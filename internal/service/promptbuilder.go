package service

import (
	"fmt"
	"strings"

	"github.com/aiudex/aiudexd/internal/domain/dossier"
)

// PromptBuilder serializes a case dossier plus the office identity into a
// single LLM instruction string. It is pure: no network call, no clock, no
// randomness — identical inputs always yield byte-identical output.
//
// Missing mandatory data is not an error here. The builder embeds the
// presence/absence of the four mandatory fields directly into the prompt so
// the model fails loud instead of silently producing a generic document.
// Callers that need a hard local guarantee validate before invoking it (see
// GenerationService.Generate).
type PromptBuilder struct{}

// NewPromptBuilder creates a PromptBuilder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build assembles the full instruction text.
func (b *PromptBuilder) Build(d *dossier.Dossier, office *dossier.Office) string {
	var sb strings.Builder

	sb.WriteString("Você é um advogado brasileiro experiente, especializado em ")
	sb.WriteString(orEmpty(d.Area, "direito"))
	sb.WriteString(". Redija a peça jurídica descrita abaixo em português formal, ")
	sb.WriteString("pronta para protocolo, completa e tecnicamente fundamentada.\n\n")

	b.writeChecklist(&sb, d)

	sb.WriteString("=== DOCUMENTO SOLICITADO ===\n")
	fmt.Fprintf(&sb, "Área do Direito: %s\n", d.Area)
	fmt.Fprintf(&sb, "Tipo de Documento: %s\n\n", d.DocumentType)

	sb.WriteString("=== PARTES (CLIENTES) ===\n")
	if len(d.Parties) == 0 {
		sb.WriteString("(nenhuma parte informada)\n")
	}
	for i := range d.Parties {
		fmt.Fprintf(&sb, "--- Parte %d ---\n", i+1)
		b.writeParty(&sb, &d.Parties[i])
	}
	sb.WriteString("\n")

	sb.WriteString("=== PARTES ADVERSAS ===\n")
	if len(d.AdverseParties) == 0 {
		sb.WriteString("(nenhuma parte adversa informada)\n")
	}
	for i := range d.AdverseParties {
		fmt.Fprintf(&sb, "--- Parte Adversa %d ---\n", i+1)
		b.writeAdverseParty(&sb, &d.AdverseParties[i])
	}
	sb.WriteString("\n")

	sb.WriteString("=== FATOS DO CASO ===\n")
	sb.WriteString(d.Facts)
	sb.WriteString("\n\n")

	sb.WriteString("=== PEDIDOS ESPECÍFICOS ===\n")
	sb.WriteString(d.Requests)
	sb.WriteString("\n\n")

	sb.WriteString("=== PRELIMINARES SELECIONADAS ===\n")
	sb.WriteString(strings.Join(d.Preliminaries, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("=== TESES SELECIONADAS ===\n")
	sb.WriteString(strings.Join(d.Theses, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("=== JURISPRUDÊNCIA SELECIONADA ===\n")
	sb.WriteString(strings.Join(d.Jurisprudence, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("=== DADOS DO PROCESSO ===\n")
	fmt.Fprintf(&sb, "Número do Processo: %s\n", d.Process.Number)
	fmt.Fprintf(&sb, "Vara/Tribunal: %s\n", d.Process.Court)
	fmt.Fprintf(&sb, "Comarca: %s\n", d.Process.District)
	fmt.Fprintf(&sb, "Valor da Causa: %s\n\n", d.Process.CaseValue)

	sb.WriteString("=== IDENTIFICAÇÃO DO ADVOGADO ===\n")
	fmt.Fprintf(&sb, "Nome: %s\n", office.LawyerName)
	fmt.Fprintf(&sb, "OAB: %s/%s\n", office.OABNumber, office.OABState)
	fmt.Fprintf(&sb, "Escritório: %s\n", office.OfficeName)
	fmt.Fprintf(&sb, "Endereço: %s\n", office.OfficeAddress)
	fmt.Fprintf(&sb, "Telefone: %s\n", office.OfficePhone)
	fmt.Fprintf(&sb, "E-mail: %s\n\n", office.OfficeEmail)

	b.writeInstructions(&sb, d, office)

	return sb.String()
}

// writeChecklist embeds the mandatory-field presence markers. The contract
// is "fail loud to the LLM": an absent field is flagged in uppercase and the
// model is told not to invent the missing content.
func (b *PromptBuilder) writeChecklist(sb *strings.Builder, d *dossier.Dossier) {
	sb.WriteString("=== CHECKLIST DE DADOS OBRIGATÓRIOS ===\n")
	writeChecklistLine(sb, "Área do Direito", d.Area != "")
	writeChecklistLine(sb, "Tipo de Documento", d.DocumentType != "")
	writeChecklistLine(sb, "Partes (Cliente)", len(d.Parties) > 0)
	writeChecklistLine(sb, "Fatos do Caso", d.Facts != "")
	sb.WriteString("Se algum item acima estiver marcado como AUSENTE, interrompa e responda ")
	sb.WriteString("apenas listando os dados faltantes. Não invente dados ausentes e não ")
	sb.WriteString("produza um documento genérico.\n\n")
}

func writeChecklistLine(sb *strings.Builder, label string, present bool) {
	if present {
		fmt.Fprintf(sb, "- %s: PRESENTE\n", label)
	} else {
		fmt.Fprintf(sb, "- %s: AUSENTE\n", label)
	}
}

// writeParty serializes a client party with a fixed field order. Optional
// fields appear as empty values; the structure never changes shape.
func (b *PromptBuilder) writeParty(sb *strings.Builder, p *dossier.Party) {
	fmt.Fprintf(sb, "Nome: %s\n", p.Name)
	fmt.Fprintf(sb, "CPF: %s\n", p.CPF)
	fmt.Fprintf(sb, "CNPJ: %s\n", p.CNPJ)
	fmt.Fprintf(sb, "RG: %s\n", p.RG)
	fmt.Fprintf(sb, "Data de Nascimento: %s\n", p.BirthDate)
	fmt.Fprintf(sb, "Estado Civil: %s\n", p.MaritalStatus)
	fmt.Fprintf(sb, "Nacionalidade: %s\n", p.Nationality)
	fmt.Fprintf(sb, "Profissão: %s\n", p.Profession)
	fmt.Fprintf(sb, "Telefone: %s\n", p.Phone)
	fmt.Fprintf(sb, "E-mail: %s\n", p.Email)
	fmt.Fprintf(sb, "Endereço: %s\n", formatAddress(p.Address))
	fmt.Fprintf(sb, "Observações: %s\n", p.Observations)
	fmt.Fprintf(sb, "Polo: %s\n", p.Polo)
}

// writeAdverseParty uses its own, shorter fixed order.
func (b *PromptBuilder) writeAdverseParty(sb *strings.Builder, p *dossier.AdverseParty) {
	fmt.Fprintf(sb, "Nome: %s\n", p.Name)
	fmt.Fprintf(sb, "CPF/CNPJ: %s\n", p.Document)
	fmt.Fprintf(sb, "Endereço: %s\n", formatAddress(p.Address))
	fmt.Fprintf(sb, "Telefone: %s\n", p.Phone)
	fmt.Fprintf(sb, "E-mail: %s\n", p.Email)
	fmt.Fprintf(sb, "Observações: %s\n", p.Observations)
}

func formatAddress(a dossier.Address) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s/%s, CEP %s",
		a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode)
}

// writeInstructions emits the formatting contract the model is expected to
// honor. These conventions are what the HTML formatter later detects by
// pattern: the addressing opener, all-caps section headers, '>' citations
// and the signature block.
func (b *PromptBuilder) writeInstructions(sb *strings.Builder, d *dossier.Dossier, office *dossier.Office) {
	sb.WriteString("=== REGRAS DE ESTRUTURA E FORMATAÇÃO ===\n")
	sb.WriteString("1. Inicie com o endereçamento formal em linha própria, em maiúsculas, ")
	sb.WriteString("começando por \"EXCELENTÍSSIMO(A) SENHOR(A) DOUTOR(A) JUIZ(A)\" seguido ")
	sb.WriteString("da vara e comarca competentes.\n")
	sb.WriteString("2. Após o endereçamento, escreva o nome da ação em linha própria, ")
	sb.WriteString("inteiramente em maiúsculas.\n")
	sb.WriteString("3. Qualifique todas as partes logo após o nome da ação, antes da seção DOS FATOS.\n")
	sb.WriteString("4. Estruture o corpo com seções numeradas em maiúsculas no padrão ")
	sb.WriteString("\"I - DOS FATOS\", \"II - DO DIREITO\", \"III - DOS PEDIDOS\".\n")
	sb.WriteString("5. Toda citação de jurisprudência ou doutrina deve vir em linha própria ")
	sb.WriteString("iniciada pelo caractere \">\".\n")

	n := 6
	if len(d.Theses) > 0 {
		fmt.Fprintf(sb, "%d. Desenvolva cada tese selecionada em subseção própria com múltiplos ", n)
		sb.WriteString("parágrafos, incorporando a jurisprudência pertinente no corpo da ")
		sb.WriteString("argumentação, e não em seção separada.\n")
		n++
	}

	fmt.Fprintf(sb, "%d. Encerre com local, data e bloco de assinatura contendo \"%s\" e \"OAB/%s %s\".\n",
		n, office.LawyerName, office.OABState, office.OABNumber)
	fmt.Fprintf(sb, "%d. Responda somente com o texto da peça, sem comentários adicionais.\n", n+1)
}

func orEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
