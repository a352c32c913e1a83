// Package export projeta o estado em tabelas planas (colunas ordenadas,
// campos por nome) e as serializa em CSV ou xlsx para download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// Tabela é o contrato com a fronteira de exportação: uma lista ordenada de
// registros com campos indexados pelo nome da coluna.
type Tabela struct {
	Nome    string
	Colunas []string
	Linhas  []map[string]string
}

func TabelaGestores(gestores []models.Gestor) Tabela {
	t := Tabela{
		Nome:    "Gestores",
		Colunas: []string{"ID", "Nome", "Agência", "Segmento", "Subsegmento", "Associados Atuais", "Limite Ideal"},
	}
	for _, g := range gestores {
		t.Linhas = append(t.Linhas, map[string]string{
			"ID":                g.ID,
			"Nome":              g.Nome,
			"Agência":           g.Agencia,
			"Segmento":          string(g.Segmento),
			"Subsegmento":       string(g.Subsegmento),
			"Associados Atuais": strconv.Itoa(g.AssociadosAtuais),
			"Limite Ideal":      strconv.Itoa(g.LimiteIdeal),
		})
	}
	return t
}

func TabelaAssociados(associados []models.Associado) Tabela {
	t := Tabela{
		Nome:    "Associados",
		Colunas: []string{"ID", "Nome", "Conta", "Segmento", "Subsegmento", "Gestor", "Agência", "Carteira", "Renda", "Investimentos", "Idade", "Data Vínculo"},
	}
	for _, a := range associados {
		t.Linhas = append(t.Linhas, map[string]string{
			"ID":            a.ID,
			"Nome":          a.Nome,
			"Conta":         a.Conta,
			"Segmento":      string(a.Segmento),
			"Subsegmento":   string(a.Subsegmento),
			"Gestor":        a.GestorID,
			"Agência":       a.Agencia,
			"Carteira":      a.Carteira,
			"Renda":         formatarValor(a.Renda),
			"Investimentos": formatarValor(a.Investimentos),
			"Idade":         strconv.Itoa(a.Idade),
			"Data Vínculo":  a.DataVinculo,
		})
	}
	return t
}

func TabelaMovimentacoes(movs []models.Movimentacao) Tabela {
	t := Tabela{
		Nome:    "Movimentações",
		Colunas: []string{"ID", "Associado", "Gestor Antigo", "Gestor Novo", "Agência Antiga", "Agência Nova", "Data", "Motivo"},
	}
	for _, m := range movs {
		t.Linhas = append(t.Linhas, map[string]string{
			"ID":             m.ID,
			"Associado":      m.AssociadoNome,
			"Gestor Antigo":  m.GestorAntigoNome,
			"Gestor Novo":    m.GestorNovoNome,
			"Agência Antiga": m.AgenciaAntiga,
			"Agência Nova":   m.AgenciaNova,
			"Data":           m.Data,
			"Motivo":         m.Motivo,
		})
	}
	return t
}

func TabelaAnalises(analises []models.AnaliseGestor) Tabela {
	t := Tabela{
		Nome:    "Análise",
		Colunas: []string{"Gestor", "Agência", "Subsegmento", "Associados", "Limite Ideal", "Ocupação (%)", "Status", "Ganhos", "Perdas"},
	}
	for _, an := range analises {
		t.Linhas = append(t.Linhas, map[string]string{
			"Gestor":       an.Gestor.Nome,
			"Agência":      an.Gestor.Agencia,
			"Subsegmento":  string(an.Gestor.Subsegmento),
			"Associados":   strconv.Itoa(an.Gestor.AssociadosAtuais),
			"Limite Ideal": strconv.Itoa(an.Gestor.LimiteIdeal),
			"Ocupação (%)": formatarValor(an.PercentualOcupacao),
			"Status":       an.Status,
			"Ganhos":       strconv.Itoa(an.GanhosPeriodo),
			"Perdas":       strconv.Itoa(an.PerdasPeriodo),
		})
	}
	return t
}

func formatarValor(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// EscreverCSV serializa a tabela com cabeçalho na primeira linha.
func EscreverCSV(w io.Writer, t Tabela) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Colunas); err != nil {
		return err
	}
	linha := make([]string, len(t.Colunas))
	for _, reg := range t.Linhas {
		for i, col := range t.Colunas {
			linha[i] = reg[col]
		}
		if err := cw.Write(linha); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EscreverXLSX serializa a tabela em uma aba única.
func EscreverXLSX(w io.Writer, t Tabela) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const aba = "Sheet1"
	cabecalho := make([]interface{}, len(t.Colunas))
	for i, c := range t.Colunas {
		cabecalho[i] = c
	}
	if err := f.SetSheetRow(aba, "A1", &cabecalho); err != nil {
		return err
	}
	for i, reg := range t.Linhas {
		linha := make([]interface{}, len(t.Colunas))
		for j, col := range t.Colunas {
			linha[j] = reg[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(aba, cell, &linha); err != nil {
			return fmt.Errorf("linha %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
