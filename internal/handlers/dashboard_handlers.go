package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/broker"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/engine"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/export"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/importer"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/store"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/utils"
)

type Importer interface {
	Importar(r io.Reader) (*importer.Resultado, error)
}

type Publisher interface {
	PublicarEvento(ctx context.Context, ev broker.Evento) error
	Close() error
}

type DashboardHandler struct {
	Store *store.Store
	Imp   Importer
	Pub   Publisher
}

func NewDashboardHandler(s *store.Store, imp Importer, pub Publisher) *DashboardHandler {
	return &DashboardHandler{Store: s, Imp: imp, Pub: pub}
}

// garantir que a requisição venha no padrão /api/{recurso}/{id}
func parseIDFromPath(path, recurso string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 3 && parts[0] == "api" && parts[1] == recurso && parts[2] != "" {
		return parts[2], true
	}
	return "", false
}

func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DashboardHandler) Gestores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.Store.Gestores())
}

// GET /api/gestores/{id} e GET /api/gestores/{id}/associados
func (h *DashboardHandler) GestorByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" || parts[1] != "gestores" || parts[2] == "" {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id := parts[2]

	g, ok := h.Store.GestorPorID(id)
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "gestor nao encontrado"})
		return
	}

	if len(parts) == 4 && parts[3] == "associados" {
		utils.WriteJSON(w, http.StatusOK, h.Store.AssociadosDoGestor(id))
		return
	}
	if len(parts) == 3 {
		utils.WriteJSON(w, http.StatusOK, g)
		return
	}
	utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (h *DashboardHandler) Associados(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.Store.Associados())
}

func (h *DashboardHandler) Agencias(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.Store.Agencias())
}

func (h *DashboardHandler) Movimentacoes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.Store.Movimentacoes())
}

func (h *DashboardHandler) Analises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.Store.Analises())
}

func (h *DashboardHandler) Dimensionamento(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	case http.MethodGet:
		utils.WriteJSON(w, http.StatusOK, h.Store.Dimensionamento())

	// PUT = replace da tabela inteira
	case http.MethodPut:
		var dto DimensionamentoPutDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validarDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}

		cfg := make([]models.DimensionamentoConfig, 0, len(dto.Limites))
		for _, item := range dto.Limites {
			cfg = append(cfg, models.DimensionamentoConfig{
				Segmento:    item.Segmento,
				Subsegmento: item.Subsegmento,
				LimiteIdeal: item.LimiteIdeal,
			})
		}
		if err := h.Store.ReplaceDimensionamento(cfg); err != nil {
			h.writeDomainErr(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, h.Store.Dimensionamento())

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DashboardHandler) Realocacoes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var dto RealocacaoDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	if err := validarDTO(dto); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	movs, err := h.Store.Realocar(dto.AssociadoIDs, dto.GestorNovoID, dto.Motivo)
	if err != nil {
		h.writeDomainErr(w, err)
		return
	}

	h.publishEvent(broker.EventoRealocacao, movs)
	utils.WriteJSON(w, http.StatusOK, map[string]any{"movimentacoes": movs})
}

// GET devolve a grade corrente; POST reconcilia para a grade desejada.
// Rota: /api/agencias/{agencia}/matriz
func (h *DashboardHandler) AgenciaMatriz(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "api" || parts[1] != "agencias" || parts[2] == "" || parts[3] != "matriz" {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	agencia := parts[2]

	switch r.Method {

	case http.MethodGet:
		gestores, subs, matriz, err := h.Store.MatrizAtual(agencia)
		if err != nil {
			h.writeDomainErr(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, MatrizRespostaDTO{
			Agencia:      agencia,
			Gestores:     gestores,
			Subsegmentos: subs,
			Matriz:       matriz,
		})

	case http.MethodPost:
		var dto MatrizReconciliarDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validarDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}

		aplicados, err := h.Store.ReconciliarMatriz(agencia, dto.Desejado)
		if err != nil {
			h.writeDomainErr(w, err)
			return
		}

		total := 0
		for _, p := range aplicados {
			total += p.Quantidade
		}
		// o ledger insere no topo: os `total` primeiros são deste lote
		movs := h.Store.Movimentacoes()
		if total < len(movs) {
			movs = movs[:total]
		}
		h.publishEvent(broker.EventoRealocacao, movs)

		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"movimentos":        aplicados,
			"associadosMovidos": total,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// POST multipart com o campo "arquivo" (xlsx exportado do core bancário)
func (h *DashboardHandler) Importacoes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.BadRequest(w, "multipart inválido: "+err.Error())
		return
	}
	file, _, err := r.FormFile("arquivo")
	if err != nil {
		utils.BadRequest(w, `campo de arquivo "arquivo" ausente`)
		return
	}
	defer file.Close()

	res, err := h.Imp.Importar(file)
	if err != nil {
		if errors.Is(err, importer.ErrPlanilhaVazia) {
			utils.BadRequest(w, err.Error())
			return
		}
		utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	h.publishEvent(broker.EventoImportacao, nil)
	utils.WriteJSON(w, http.StatusCreated, res)
}

// GET /api/exportacoes/{tabela}?formato=csv|xlsx
func (h *DashboardHandler) Exportacoes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	nome, ok := parseIDFromPath(r.URL.Path, "exportacoes")
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var t export.Tabela
	switch nome {
	case "gestores":
		t = export.TabelaGestores(h.Store.Gestores())
	case "associados":
		t = export.TabelaAssociados(h.Store.Associados())
	case "movimentacoes":
		t = export.TabelaMovimentacoes(h.Store.Movimentacoes())
	case "analises":
		t = export.TabelaAnalises(h.Store.Analises())
	default:
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "tabela desconhecida: " + nome})
		return
	}

	formato := r.URL.Query().Get("formato")
	if formato == "" {
		formato = "csv"
	}
	switch formato {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome+".csv"))
		if err := export.EscreverCSV(w, t); err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome+".xlsx"))
		if err := export.EscreverXLSX(w, t); err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	default:
		utils.BadRequest(w, "formato desconhecido: "+formato)
	}
}

// traduz os erros do domínio para status HTTP
func (h *DashboardHandler) writeDomainErr(w http.ResponseWriter, err error) {
	var desb *engine.DesbalanceErro
	var insuf *engine.InsuficienciaErro

	switch {
	case errors.Is(err, engine.ErrGestorInexistente),
		errors.Is(err, store.ErrAgenciaInexistente):
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &desb), errors.As(err, &insuf):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrDimensionamentoInvalido):
		utils.BadRequest(w, err.Error())
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *DashboardHandler) publishEvent(tipo string, movs []models.Movimentacao) {
	if h.Pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = h.Pub.PublicarEvento(ctx, broker.Evento{
		Tipo:          tipo,
		Movimentacoes: movs,
		EmitidoEm:     time.Now().UTC(),
	})
}
