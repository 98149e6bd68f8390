// Package heuristic implements the deterministic keyword-rule classifier used
// when the remote classification service is unavailable.
package heuristic

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/runnerr0/mailtriage/internal/keywords"
	"github.com/runnerr0/mailtriage/internal/model"
)

// Reasoning marks results produced by this package.
const Reasoning = "Classificação heurística local (serviço remoto indisponível)."

const (
	baseConfidence = 0.55
	matchWeight    = 0.10
	maxConfidence  = 0.95
)

// Terms are matched as substrings of the accent-folded, lowercased text, so
// stems like "solicit" cover "solicitação" and "solicitar".
var (
	productiveTerms = []string{
		"suporte", "urgente", "erro", "falha", "problema", "nao consigo",
		"acesso", "senha", "liberar", "pedido", "solicit", "status", "prazo",
		"cancel", "rescind", "contrato", "chamado", "fatura", "boleto",
		"pagamento", "duvida", "ajuda", "atualiza", "reembolso", "aviso previ",
	}
	unproductiveTerms = []string{
		"obrigad", "agradec", "parabens", "feliz", "bom dia", "boa tarde",
		"boa noite", "natal", "ano novo", "abraco", "felicidade", "cumpriment",
		"saudac", "bom fim de semana",
	}
)

var replyTemplates = map[model.Label]string{
	model.Productive: "Recebemos sua mensagem e estamos analisando. Poderia compartilhar " +
		"mais detalhes (ex.: número do contrato ou chamado) para direcionar o atendimento?",
	model.Unproductive: "Agradecemos o contato e permanecemos à disposição caso precise de algo.",
}

// Classify never fails. Blank text is Unproductive with the floor confidence;
// otherwise the side with more distinct term matches wins and ties go to
// Productive so actionable mail is not missed.
func Classify(text string) model.Result {
	folded := fold(text)

	label := model.Unproductive
	best := 0
	if strings.TrimSpace(folded) != "" {
		prod := countMatches(folded, productiveTerms)
		improd := countMatches(folded, unproductiveTerms)
		if prod >= improd {
			label = model.Productive
		}
		best = max(prod, improd)
	}

	return model.Result{
		Classification:    label,
		ConfidenceScore:   confidence(best),
		SuggestedResponse: replyTemplates[label],
		KeywordsExtracted: keywords.Extract(text),
		Reasoning:         Reasoning,
	}
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

func confidence(matches int) float64 {
	c := math.Min(maxConfidence, baseConfidence+matchWeight*float64(matches))
	return math.Round(c*100) / 100
}

// fold lowercases text and strips combining marks ("Solicitação" -> "solicitacao").
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(out)
}
