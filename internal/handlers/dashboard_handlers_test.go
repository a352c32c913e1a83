package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/broker"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/importer"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/store"
)

/*
RODAR TODOS OS TESTES:

go test -v ./internal/handlers -count=1
*/

// Fixture: agência 0101 com dois gestores PF (Ana com 3 associados PF I,
// Bruno com 1) e a agência 0202 com uma gestora Agro sem associados.
func novoStoreTeste(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	gestores := []models.Gestor{
		{ID: "g-a", Nome: "Ana", Agencia: "0101", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, LimiteIdeal: 450},
		{ID: "g-b", Nome: "Bruno", Agencia: "0101", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, LimiteIdeal: 450},
		{ID: "g-c", Nome: "Carla", Agencia: "0202", Segmento: models.SegmentoAgro, Subsegmento: models.SubAgI, LimiteIdeal: 250},
	}
	associados := []models.Associado{
		{ID: "a-1", Nome: "Maria", Conta: "1", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, GestorID: "g-a", Agencia: "0101"},
		{ID: "a-2", Nome: "José", Conta: "2", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, GestorID: "g-a", Agencia: "0101"},
		{ID: "a-3", Nome: "Paula", Conta: "3", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, GestorID: "g-a", Agencia: "0101"},
		{ID: "a-4", Nome: "Pedro", Conta: "4", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, GestorID: "g-b", Agencia: "0101"},
	}
	s.CarregarBase(gestores, associados)
	return s
}

func novoHandlerTeste(t *testing.T) (*DashboardHandler, *pubMock) {
	t.Helper()
	pm := &pubMock{}
	h := NewDashboardHandler(novoStoreTeste(t), &impMock{}, pm)
	return h, pm
}

// 1) GETs de leitura

func TestGestores_List(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/gestores", nil)
	rr := httptest.NewRecorder()
	h.Gestores(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got []models.Gestor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 3)
}

func TestGestores_MethodNotAllowed(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/gestores", nil)
	rr := httptest.NewRecorder()
	h.Gestores(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGestorByID_Found(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/gestores/g-a", nil)
	rr := httptest.NewRecorder()
	h.GestorByID(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.Gestor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "Ana", got.Nome)
	require.Equal(t, 3, got.AssociadosAtuais)
}

func TestGestorByID_Associados(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/gestores/g-a/associados", nil)
	rr := httptest.NewRecorder()
	h.GestorByID(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got []models.Associado
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 3)
}

func TestGestorByID_NotFound(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/gestores/g-zzz", nil)
	rr := httptest.NewRecorder()
	h.GestorByID(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAgencias_List(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agencias", nil)
	rr := httptest.NewRecorder()
	h.Agencias(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got []models.Agencia
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
}

// 2) POST /api/realocacoes

func TestRealocacoes_OK(t *testing.T) {
	h, pm := novoHandlerTeste(t)

	var mu sync.Mutex
	var publicados []broker.Evento
	pm.PublicarFn = func(_ context.Context, ev broker.Evento) error {
		mu.Lock()
		publicados = append(publicados, ev)
		mu.Unlock()
		return nil
	}

	body := bytes.NewBufferString(`{
		"associadoIds": ["a-1", "a-2"],
		"gestorNovoId": "g-b",
		"motivo": "Balanceamento de carteira"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/realocacoes", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Realocacoes(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got struct {
		Movimentacoes []models.Movimentacao `json:"movimentacoes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Movimentacoes, 2)
	require.Equal(t, "Bruno", got.Movimentacoes[0].GestorNovoNome)

	// contadores derivados atualizados
	ga, _ := h.Store.GestorPorID("g-a")
	gb, _ := h.Store.GestorPorID("g-b")
	require.Equal(t, 1, ga.AssociadosAtuais)
	require.Equal(t, 3, gb.AssociadosAtuais)

	// evento publicado na fila
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, publicados, 1)
	require.Equal(t, broker.EventoRealocacao, publicados[0].Tipo)
	require.Len(t, publicados[0].Movimentacoes, 2)
}

func TestRealocacoes_GestorInexistente(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	body := bytes.NewBufferString(`{
		"associadoIds": ["a-1"],
		"gestorNovoId": "g-zzz",
		"motivo": "x"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/realocacoes", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Realocacoes(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestRealocacoes_DTOInvalido(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	// sem gestorNovoId
	body := bytes.NewBufferString(`{"associadoIds":["a-1"],"motivo":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/realocacoes", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Realocacoes(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestRealocacoes_JSONInvalido(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodPost, "/api/realocacoes", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Realocacoes(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

// 3) matriz: GET e reconciliação

func TestAgenciaMatriz_Get(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agencias/0101/matriz", nil)
	rr := httptest.NewRecorder()
	h.AgenciaMatriz(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got MatrizRespostaDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Gestores, 2)
	require.Equal(t, 3, got.Matriz["g-a"][models.SubPFI])
	require.Equal(t, 1, got.Matriz["g-b"][models.SubPFI])
}

func TestAgenciaMatriz_Get_AgenciaInexistente(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agencias/9999/matriz", nil)
	rr := httptest.NewRecorder()
	h.AgenciaMatriz(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestAgenciaMatriz_Reconciliar_OK(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	// 3/1 -> 2/2: um movimento de 1 associado
	body := bytes.NewBufferString(`{
		"desejado": {
			"g-a": {"PF I": 2},
			"g-b": {"PF I": 2}
		}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/agencias/0101/matriz", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.AgenciaMatriz(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got struct {
		AssociadosMovidos int `json:"associadosMovidos"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, 1, got.AssociadosMovidos)

	ga, _ := h.Store.GestorPorID("g-a")
	gb, _ := h.Store.GestorPorID("g-b")
	require.Equal(t, 2, ga.AssociadosAtuais)
	require.Equal(t, 2, gb.AssociadosAtuais)
}

func TestAgenciaMatriz_Reconciliar_Desbalanceada(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	// soma 3+3 != 4: rejeita inteira, nada muda
	body := bytes.NewBufferString(`{
		"desejado": {
			"g-a": {"PF I": 3},
			"g-b": {"PF I": 3}
		}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/agencias/0101/matriz", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.AgenciaMatriz(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	ga, _ := h.Store.GestorPorID("g-a")
	require.Equal(t, 3, ga.AssociadosAtuais)
}

// 4) dimensionamento

func TestDimensionamento_Get(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dimensionamento", nil)
	rr := httptest.NewRecorder()
	h.Dimensionamento(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got []models.DimensionamentoConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 16)
}

func TestDimensionamento_Put_OK(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	body := bytes.NewBufferString(`{
		"limites": [
			{"segmento": "PF", "subsegmento": "PF I", "limiteIdeal": 9999}
		]
	}`)
	req := httptest.NewRequest(http.MethodPut, "/api/dimensionamento", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Dimensionamento(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got []models.DimensionamentoConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, 9999, got[0].LimiteIdeal)
}

func TestDimensionamento_Put_SubsegmentoForaDoSegmento(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	body := bytes.NewBufferString(`{
		"limites": [
			{"segmento": "PF", "subsegmento": "E1", "limiteIdeal": 100}
		]
	}`)
	req := httptest.NewRequest(http.MethodPut, "/api/dimensionamento", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Dimensionamento(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestDimensionamento_Put_LimiteNegativo(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	body := bytes.NewBufferString(`{
		"limites": [
			{"segmento": "PF", "subsegmento": "PF I", "limiteIdeal": -1}
		]
	}`)
	req := httptest.NewRequest(http.MethodPut, "/api/dimensionamento", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Dimensionamento(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

// 5) importação

func montarMultipart(t *testing.T, campo string, conteudo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(campo, "carteiras.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(conteudo)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportacoes_OK(t *testing.T) {
	h, _ := novoHandlerTeste(t)
	h.Imp = &impMock{
		ImportarFn: func(r io.Reader) (*importer.Resultado, error) {
			return &importer.Resultado{Gestores: 2, Associados: 10}, nil
		},
	}

	buf, ct := montarMultipart(t, "arquivo", []byte("xlsx-fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/importacoes", buf)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Importacoes(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var got importer.Resultado
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, 10, got.Associados)
}

func TestImportacoes_PlanilhaVazia(t *testing.T) {
	h, _ := novoHandlerTeste(t)
	h.Imp = &impMock{
		ImportarFn: func(r io.Reader) (*importer.Resultado, error) {
			return nil, importer.ErrPlanilhaVazia
		},
	}

	buf, ct := montarMultipart(t, "arquivo", []byte("xlsx-fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/importacoes", buf)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Importacoes(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestImportacoes_CampoAusente(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	buf, ct := montarMultipart(t, "outro", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/importacoes", buf)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Importacoes(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

// 6) exportação

func TestExportacoes_CSV(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exportacoes/gestores?formato=csv", nil)
	rr := httptest.NewRecorder()
	h.Exportacoes(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rr.Body.String(), "Ana")
}

func TestExportacoes_FormatoPadraoCSV(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exportacoes/associados", nil)
	rr := httptest.NewRecorder()
	h.Exportacoes(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
}

func TestExportacoes_TabelaDesconhecida(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exportacoes/contratos", nil)
	rr := httptest.NewRecorder()
	h.Exportacoes(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportacoes_FormatoDesconhecido(t *testing.T) {
	h, _ := novoHandlerTeste(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exportacoes/gestores?formato=pdf", nil)
	rr := httptest.NewRecorder()
	h.Exportacoes(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
