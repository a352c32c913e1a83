package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

func TestEscreverCSV(t *testing.T) {
	tab := TabelaMovimentacoes([]models.Movimentacao{
		{
			ID: "mov-1", AssociadoNome: "Maria, da Silva",
			GestorAntigoNome: "Ana", GestorNovoNome: "Bruno",
			AgenciaAntiga: "0101", AgenciaNova: "0202",
			Data: "2025-01-02T10:00:00Z", Motivo: "ajuste",
		},
	})

	var buf bytes.Buffer
	if err := EscreverCSV(&buf, tab); err != nil {
		t.Fatalf("csv: %v", err)
	}
	linhas := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(linhas) != 2 {
		t.Fatalf("linhas=%d want=2: %q", len(linhas), buf.String())
	}
	if !strings.HasPrefix(linhas[0], "ID,Associado,Gestor Antigo") {
		t.Fatalf("cabecalho: %q", linhas[0])
	}
	// nome com vírgula sai entre aspas
	if !strings.Contains(linhas[1], `"Maria, da Silva"`) {
		t.Fatalf("escape de virgula: %q", linhas[1])
	}
}

func TestEscreverXLSX_RoundTrip(t *testing.T) {
	tab := TabelaGestores([]models.Gestor{
		{ID: "g-a", Nome: "Ana", Agencia: "0101", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, AssociadosAtuais: 7, LimiteIdeal: 10},
	})

	var buf bytes.Buffer
	if err := EscreverXLSX(&buf, tab); err != nil {
		t.Fatalf("xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reabrir: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("linhas: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("linhas=%d want=2", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][1] != "Ana" || rows[1][5] != "7" {
		t.Fatalf("conteudo: %#v", rows)
	}
}

func TestTabelaAssociados_OrdemDasColunas(t *testing.T) {
	tab := TabelaAssociados([]models.Associado{{ID: "a-1", Nome: "Maria", Renda: 1234.5}})
	if tab.Colunas[0] != "ID" || tab.Colunas[1] != "Nome" {
		t.Fatalf("colunas: %v", tab.Colunas)
	}
	if tab.Linhas[0]["Renda"] != "1234.50" {
		t.Fatalf("renda formatada: %q", tab.Linhas[0]["Renda"])
	}
}
