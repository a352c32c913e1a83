// Package classifier enquadra um associado em (segmento, subsegmento) a partir
// dos atributos financeiros da planilha. Função pura: sempre retorna um par
// válido, nunca erro — entrada fora das faixas cai nos "else" das cascatas.
package classifier

import (
	"strings"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// Atributos são os campos brutos que a classificação olha. SegmentoHint é o
// segmento que já veio preenchido na planilha, se veio.
type Atributos struct {
	SegmentoHint  string
	Renda         float64
	Investimentos float64
	Idade         int
}

// Classificar aplica as regras de enquadramento.
//
// Quando a planilha já traz o segmento, a dica vale por substring, nesta
// ordem: AGRO/AG -> Agro, PJ/E/MEI -> PJ, PF -> PF. Atenção: o "AG" casa com
// qualquer string que contenha essas letras, então a ordem dos testes importa
// (comportamento herdado da regra de negócio, mantido como está).
// Dica que não casa com nada cai na classificação automática.
//
// Sem dica: renda zero ou ausente indica pessoa jurídica e os investimentos
// passam a valer como faturamento; caso contrário, regras de PF.
func Classificar(a Atributos) (models.Segmento, models.Subsegmento) {
	if hint := strings.ToUpper(strings.TrimSpace(a.SegmentoHint)); hint != "" {
		switch {
		case strings.Contains(hint, "AGRO") || strings.Contains(hint, "AG"):
			return classificarAgro(a.Investimentos)
		case strings.Contains(hint, "PJ") || strings.Contains(hint, "E") || strings.Contains(hint, "MEI"):
			return classificarPJ(a.Investimentos)
		case strings.Contains(hint, "PF"):
			return classificarPF(a.Renda, a.Investimentos, a.Idade)
		}
	}

	if a.Renda == 0 {
		return classificarPJ(a.Investimentos)
	}
	return classificarPF(a.Renda, a.Investimentos, a.Idade)
}

// Cascata de PF: primeira regra que casar vence.
func classificarPF(renda, investimentos float64, idade int) (models.Segmento, models.Subsegmento) {
	switch {
	case idade > 64 && ((renda >= 0 && renda <= 3999.99) || (investimentos >= 0 && investimentos <= 79999.99)):
		return models.SegmentoPF, models.SubPFMelhorIdade
	case renda >= 30000 || investimentos > 3000000:
		return models.SegmentoPF, models.SubPFVI
	case (renda >= 15000 && renda <= 29999.99) || investimentos > 500000:
		return models.SegmentoPF, models.SubPFV
	case (renda >= 10000 && renda <= 14999.99) || investimentos > 150000:
		return models.SegmentoPF, models.SubPFIV
	case (renda >= 4000 && renda <= 9999.99) || investimentos > 80000:
		return models.SegmentoPF, models.SubPFIII
	case (renda >= 2000 && renda <= 3999.99) || (investimentos >= 0 && investimentos <= 79999.99):
		return models.SegmentoPF, models.SubPFII
	default:
		return models.SegmentoPF, models.SubPFI
	}
}

// Agro enquadra pelo faturamento (proxy: investimentos).
func classificarAgro(faturamento float64) (models.Segmento, models.Subsegmento) {
	switch {
	case faturamento > 2400000:
		return models.SegmentoAgro, models.SubAgIII
	case faturamento >= 500000 && faturamento <= 2400000:
		return models.SegmentoAgro, models.SubAgII
	default:
		return models.SegmentoAgro, models.SubAgI
	}
}

// PJ enquadra pelo faturamento (proxy: investimentos).
func classificarPJ(faturamento float64) (models.Segmento, models.Subsegmento) {
	switch {
	case faturamento > 25000000:
		return models.SegmentoPJ, models.SubE5
	case faturamento >= 10000000 && faturamento <= 25000000:
		return models.SegmentoPJ, models.SubE4
	case faturamento >= 3000000 && faturamento < 10000000:
		return models.SegmentoPJ, models.SubE3
	case faturamento >= 500000 && faturamento < 3000000:
		return models.SegmentoPJ, models.SubE2
	case faturamento >= 81000 && faturamento < 500000:
		return models.SegmentoPJ, models.SubE1
	default:
		return models.SegmentoPJ, models.SubMEI
	}
}
