package handlers

import "github.com/joaowrlld/sicredi-gestor-insight/internal/models"

// somente os campos do contrato; ids/derivados são do servidor
type RealocacaoDTO struct {
	AssociadoIDs []string `json:"associadoIds" validate:"required,min=1,dive,required"`
	GestorNovoID string   `json:"gestorNovoId" validate:"required"`
	Motivo       string   `json:"motivo" validate:"required"`
}

// PUT substitui a tabela inteira; não há edição parcial de limite.
type DimensionamentoPutDTO struct {
	Limites []DimensionamentoItemDTO `json:"limites" validate:"required,min=1,dive"`
}

type DimensionamentoItemDTO struct {
	Segmento    models.Segmento    `json:"segmento" validate:"required"`
	Subsegmento models.Subsegmento `json:"subsegmento" validate:"required"`
	LimiteIdeal int                `json:"limiteIdeal" validate:"gte=0"`
}

// Células omitidas valem a contagem original (nenhuma mudança).
type MatrizReconciliarDTO struct {
	Desejado map[string]map[models.Subsegmento]int `json:"desejado" validate:"required"`
}

type MatrizRespostaDTO struct {
	Agencia      string                                `json:"agencia"`
	Gestores     []models.Gestor                       `json:"gestores"`
	Subsegmentos []models.Subsegmento                  `json:"subsegmentos"`
	Matriz       map[string]map[models.Subsegmento]int `json:"matriz"`
}
