package extract

import (
	"regexp"
	"strings"
)

// Eventos de sinistro reconhecidos
const (
	EventCollision = "colisão"
	EventTheft     = "roubo/furto"
	EventBreakdown = "pane"
)

var (
	cpfRE   = regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)
	cnpjRE  = regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)
	plateRE = regexp.MustCompile(`\b[A-Z]{3}[0-9][A-Z0-9][0-9]{2}\b`) // Mercosul e padrão antigo
	emailRE = regexp.MustCompile(`(?i)\b[^@\s]+@[^@\s]+\.[^@\s]+\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?55\s?)?(?:\(?\d{2}\)?\s?)?\d{4,5}-?\d{4}\b`)

	nonDigitRE = regexp.MustCompile(`\D`)
)

// ClaimKeywords indicam intenção de abrir ou tratar um sinistro.
var ClaimKeywords = []string{
	"bati", "batida", "colisão", "colisao", "acidente", "capotei",
	"roubo", "furt", "assalto", "pane", "guincho", "carro reserva",
	"sinistro", "claim", "quebrou", "perda total",
}

type eventRule struct {
	event    string
	keywords []string
}

// ordem importa: a primeira regra que casar define o evento
var eventRules = []eventRule{
	{event: EventCollision, keywords: []string{"colis", "bati", "acidente"}},
	{event: EventTheft, keywords: []string{"roubo", "furto", "assalto"}},
	{event: EventBreakdown, keywords: []string{"pane", "quebrou"}},
}

// Identifiers é o resultado da extração de um texto livre.
// Campos vazios significam que nada foi encontrado.
type Identifiers struct {
	CPF         string
	CNPJ        string
	Plate       string
	Email       string
	Phone       string
	Event       string
	ClaimIntent bool
}

// Extract aplica todos os extratores ao texto. Nunca falha.
func Extract(text string) Identifiers {
	ids := Identifiers{
		CPF:         CPF(text),
		CNPJ:        CNPJ(text),
		Plate:       Plate(text),
		Email:       Email(text),
		Phone:       Phone(text),
		Event:       DetectEvent(text),
		ClaimIntent: IsClaimIntent(text),
	}

	// Um CPF ou CNPJ sem pontuação também casa com o padrão de telefone.
	if ids.Phone != "" {
		digits := digitsOnly(ids.Phone)
		if digits == ids.CPF || digits == ids.CNPJ {
			ids.Phone = ""
		}
	}
	return ids
}

// CPF retorna o primeiro CPF do texto, apenas dígitos.
func CPF(text string) string {
	m := cpfRE.FindString(text)
	if m == "" {
		return ""
	}
	return digitsOnly(m)
}

// CNPJ retorna o primeiro CNPJ do texto, apenas dígitos.
func CNPJ(text string) string {
	m := cnpjRE.FindString(text)
	if m == "" {
		return ""
	}
	return digitsOnly(m)
}

// Plate retorna a primeira placa do texto em maiúsculas.
func Plate(text string) string {
	return plateRE.FindString(strings.ToUpper(text))
}

func Email(text string) string {
	return emailRE.FindString(text)
}

func Phone(text string) string {
	return phoneRE.FindString(text)
}

// IsClaimIntent verifica se o texto contém alguma palavra-chave de sinistro.
func IsClaimIntent(text string) bool {
	t := strings.ToLower(text)
	for _, k := range ClaimKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// DetectEvent classifica o tipo de evento do sinistro, ou "" se não houver.
func DetectEvent(text string) string {
	t := strings.ToLower(text)
	for _, rule := range eventRules {
		for _, k := range rule.keywords {
			if strings.Contains(t, k) {
				return rule.event
			}
		}
	}
	return ""
}

func digitsOnly(s string) string {
	return nonDigitRE.ReplaceAllString(s, "")
}
